// Package assistant runs the storefront chat widget on top of a language model.
// Backend failures never surface as errors: the shopper gets a localized
// fallback reply instead.
package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/i18n"
)

// ErrClosed is returned when the chat was closed while a reply was in flight.
// The late reply is discarded.
var ErrClosed = errors.New("assistant conversation closed")

// MaxMessageRunes bounds a single shopper message.
const MaxMessageRunes = 2000

// Conversation is one stateful chat with the model.
type Conversation interface {
	Send(ctx context.Context, text string) (string, error)
}

// Backend opens conversations.
type Backend interface {
	CreateSession(ctx context.Context) (Conversation, error)
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one chat bubble. HTML is the sanitized rendering of Text.
type Message struct {
	Role     Role      `json:"role"`
	Text     string    `json:"text"`
	HTML     string    `json:"html"`
	Fallback bool      `json:"fallback,omitempty"`
	At       time.Time `json:"at"`
}

type chat struct {
	conv     Conversation
	messages []Message
	closed   bool
	// turn admits one Send at a time; conversations keep unsynchronised history.
	turn chan struct{}
}

type Service struct {
	backend  Backend
	messages *i18n.Bundle
	logger   *zap.Logger
	timeout  time.Duration
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	now      func() time.Time

	mu    sync.Mutex
	chats map[string]*chat
}

// New builds the service. A nil backend answers every message with the
// localized fallback.
func New(backend Backend, messages *i18n.Bundle, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return &Service{
		backend:  backend,
		messages: messages,
		logger:   logger,
		timeout:  timeout,
		md:       goldmark.New(),
		policy:   policy,
		now:      time.Now,
		chats:    make(map[string]*chat),
	}
}

// Open starts (or resumes) the chat of a session and returns its transcript,
// which begins with a localized greeting.
func (s *Service) Open(sessionID, lang string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chatFor(sessionID, lang)
	return append([]Message(nil), c.messages...)
}

// History returns the transcript without opening a chat.
func (s *Service) History(sessionID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[sessionID]
	if !ok {
		return []Message{}
	}
	return append([]Message(nil), c.messages...)
}

// Send forwards a shopper message and returns the model's reply. Sends on one
// chat run one at a time. Only ErrClosed, validation errors and the context
// error of a caller that gave up waiting are returned; backend trouble yields
// a fallback reply.
func (s *Service) Send(ctx context.Context, sessionID, text, lang string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, fmt.Errorf("message required: %w", domain.ErrValidation)
	}
	if len([]rune(text)) > MaxMessageRunes {
		return Message{}, fmt.Errorf("message longer than %d characters: %w", MaxMessageRunes, domain.ErrValidation)
	}

	s.mu.Lock()
	c := s.chatFor(sessionID, lang)
	s.mu.Unlock()

	select {
	case c.turn <- struct{}{}:
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
	defer func() { <-c.turn }()

	s.mu.Lock()
	c.messages = append(c.messages, s.message(RoleUser, text, false))
	s.mu.Unlock()

	conv, err := s.conversation(ctx, c)
	var reply Message
	if err != nil {
		s.logger.Warn("assistant: create session failed", zap.Error(err))
		reply = s.message(RoleModel, s.messages.T(lang, "bot.fallback"), true)
	} else {
		reply = s.ask(ctx, conv, text, lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c.closed || s.chats[sessionID] != c {
		return Message{}, ErrClosed
	}
	c.messages = append(c.messages, reply)
	return reply, nil
}

// Close ends the chat of a session. Replies still in flight are dropped.
func (s *Service) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chats[sessionID]; ok {
		c.closed = true
		delete(s.chats, sessionID)
	}
}

func (s *Service) ask(ctx context.Context, conv Conversation, text, lang string) Message {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := conv.Send(ctx, text)
	if err != nil {
		s.logger.Warn("assistant: send failed", zap.Error(err))
		return s.message(RoleModel, s.messages.T(lang, "bot.fallback"), true)
	}
	if strings.TrimSpace(out) == "" {
		return s.message(RoleModel, s.messages.T(lang, "bot.empty_reply"), true)
	}
	return s.message(RoleModel, out, false)
}

// conversation lazily opens the backend chat. It runs outside the lock since
// opening may hit the network.
func (s *Service) conversation(ctx context.Context, c *chat) (Conversation, error) {
	s.mu.Lock()
	conv := c.conv
	s.mu.Unlock()
	if conv != nil {
		return conv, nil
	}
	if s.backend == nil {
		return nil, errors.New("assistant backend not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	conv, err := s.backend.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.conv == nil {
		c.conv = conv
	}
	return c.conv, nil
}

// chatFor must be called with s.mu held.
func (s *Service) chatFor(sessionID, lang string) *chat {
	c, ok := s.chats[sessionID]
	if !ok {
		c = &chat{
			messages: []Message{s.message(RoleModel, s.messages.T(lang, "bot.greeting"), false)},
			turn:     make(chan struct{}, 1),
		}
		s.chats[sessionID] = c
	}
	return c
}

func (s *Service) message(role Role, text string, fallback bool) Message {
	return Message{Role: role, Text: text, HTML: s.render(text), Fallback: fallback, At: s.now()}
}

func (s *Service) render(text string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(text), &buf); err != nil {
		return s.policy.Sanitize(text)
	}
	return strings.TrimSpace(s.policy.Sanitize(buf.String()))
}
