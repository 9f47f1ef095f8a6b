package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Kind is the type of CSV file being imported.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

type ProductWriter interface {
	UpsertProduct(ctx context.Context, product domain.Product) (domain.Product, error)
}

type CategoryWriter interface {
	UpsertCategory(ctx context.Context, category domain.Category) (domain.Category, error)
}

// CSVImporter reads catalogue spreadsheets. Product files carry one product
// per row with a non-empty id; following rows with an empty id add options to
// that product.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
	}
}

// DetectKind inspects the header row.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	return kindOf(headerIndex(headers))
}

// Run imports every row and returns the number of products or categories written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	kind, err := kindOf(index)
	if err != nil {
		return 0, err
	}
	if kind == KindCategories {
		return i.runCategories(ctx, index)
	}
	return i.runProducts(ctx, index)
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	if i.products == nil {
		return 0, errors.New("product writer not configured")
	}
	var (
		current  *domain.Product
		imported int
		line     = 1
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if _, err := i.products.UpsertProduct(ctx, *current); err != nil {
			return fmt.Errorf("upsert product %q: %w", current.ID, err)
		}
		imported++
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		opt, hasOption, err := parseOption(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}

		if id := pick(record, index, "id"); id != "" {
			if err := flush(); err != nil {
				return imported, err
			}
			p, err := parseProduct(id, record, index)
			if err != nil {
				return imported, fmt.Errorf("line %d: %w", line, err)
			}
			if hasOption {
				p.Options = append(p.Options, opt)
			}
			current = &p
			continue
		}

		// Continuation rows (options) belong to the current product.
		if current != nil && hasOption {
			current.Options = append(current.Options, opt)
		}
	}

	if err := flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	if i.categories == nil {
		return 0, errors.New("category writer not configured")
	}
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		name := pick(record, index, "name")
		if name == "" {
			continue
		}
		c := domain.Category{
			ID:     pick(record, index, "id"),
			Name:   name,
			NameAr: pick(record, index, "name.ar"),
			Icon:   pick(record, index, "icon"),
		}
		if _, err := i.categories.UpsertCategory(ctx, c); err != nil {
			return imported, fmt.Errorf("upsert category %q: %w", name, err)
		}
		imported++
	}
	return imported, nil
}

func parseProduct(id string, record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		ID:            id,
		Name:          pick(record, index, "name"),
		NameAr:        pick(record, index, "name.ar"),
		Description:   pick(record, index, "description"),
		DescriptionAr: pick(record, index, "description.ar"),
		Category:      pick(record, index, "category"),
		Currency:      pick(record, index, "currency"),
		Image:         pick(record, index, "image"),
	}
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("product %q: name required: %w", id, domain.ErrValidation)
	}
	if raw := pick(record, index, "basePrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %q: basePrice %q: %w", id, raw, domain.ErrValidation)
		}
		p.BasePrice = price
	}
	if raw := pick(record, index, "inStock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %q: inStock %q: %w", id, raw, domain.ErrValidation)
		}
		p.InStock = domain.BoolPtr(v)
	}
	return p, nil
}

func parseOption(record []string, index map[string]int) (domain.ProductOption, bool, error) {
	label := pick(record, index, "option.label")
	raw := pick(record, index, "option.price")
	if label == "" && raw == "" {
		return domain.ProductOption{}, false, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.ProductOption{}, false, fmt.Errorf("option %q price %q: %w", label, raw, domain.ErrValidation)
	}
	return domain.ProductOption{
		ID:    pick(record, index, "option.id"),
		Label: label,
		Price: price,
	}, true, nil
}

func kindOf(index map[string]int) (Kind, error) {
	if _, ok := index["basePrice"]; ok {
		return KindProducts, nil
	}
	if _, ok := index["option.price"]; ok {
		return KindProducts, nil
	}
	if _, ok := index["name"]; ok {
		return KindCategories, nil
	}
	return "", fmt.Errorf("unrecognised csv header: %w", domain.ErrValidation)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
