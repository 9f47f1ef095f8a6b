package customer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

// AdminSeed describes the built-in administrator. The plain password is
// hashed at start-up and never stored.
type AdminSeed struct {
	ID       string
	Email    string
	Name     string
	Password string
}

// Service is the user directory: registration, login and admin listing.
type Service struct {
	mu     sync.Mutex
	store  *snapshot.Adapter
	logger *zap.Logger
	admin  domain.User
	users  []domain.User
	cost   int
	newID  func() string
}

// Option customises a Service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// New loads the directory and prepares the seeded admin.
func New(ctx context.Context, store *snapshot.Adapter, admin AdminSeed, logger *zap.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:  store,
		logger: logger,
		users:  snapshot.Load(ctx, store, snapshot.KeyUsers, []domain.User{}),
		cost:   bcrypt.DefaultCost,
		newID: func() string {
			return "u-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	s.admin = domain.User{
		ID:           admin.ID,
		Email:        strings.ToLower(strings.TrimSpace(admin.Email)),
		Name:         admin.Name,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	return s, nil
}

// RegisterInput captures the registration form.
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates a user with role "user". The email is stored lower-cased
// and must be unique; the duplicate check runs before password confirmation.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return domain.User{}, fmt.Errorf("email required: %w", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("email %q: %w", email, domain.ErrValidation)
	}
	if in.Password == "" {
		return domain.User{}, fmt.Errorf("password required: %w", domain.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(email) != nil {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	if in.Password != in.ConfirmPassword {
		return domain.User{}, domain.ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:           s.newID(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleUser,
	}
	s.users = append(s.users, u)
	s.persist(ctx)
	s.logger.Info("user registered", zap.String("id", u.ID))
	return u, nil
}

// Login checks the seeded admin first, then the directory.
func (s *Service) Login(email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findByEmail(email)
	if u == nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Warn("password hash check failed", zap.String("user_id", u.ID), zap.Error(err))
		}
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return *u, nil
}

// Get resolves a user id, including the seeded admin.
func (s *Service) Get(id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.admin.ID {
		return s.admin, nil
	}
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// List returns registered users. The seeded admin is not part of the directory.
func (s *Service) List() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.User(nil), s.users...)
}

// Delete removes a registered user; their orders are kept. The seeded admin
// cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == s.admin.ID {
		return fmt.Errorf("delete admin: %w", domain.ErrForbidden)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.persist(ctx)
			return nil
		}
	}
	return nil
}

func (s *Service) findByEmail(email string) *domain.User {
	if s.admin.Email == email {
		return &s.admin
	}
	for i := range s.users {
		if s.users[i].Email == email {
			return &s.users[i]
		}
	}
	return nil
}

func (s *Service) persist(ctx context.Context) {
	s.store.Save(ctx, snapshot.KeyUsers, s.users)
}
