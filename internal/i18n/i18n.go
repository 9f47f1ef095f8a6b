// Package i18n resolves the storefront language preference and looks up
// user-facing messages. Only English and Arabic are supported.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const (
	English = "en"
	Arabic  = "ar"
)

//go:embed locales/*.json
var localesFS embed.FS

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// Bundle holds the message tables keyed by language.
type Bundle struct {
	dict map[string]map[string]string
}

// Load reads the embedded message tables.
func Load() (*Bundle, error) {
	b := &Bundle{dict: make(map[string]map[string]string, 2)}
	for _, lang := range []string{English, Arabic} {
		raw, err := localesFS.ReadFile("locales/" + lang + ".json")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal locale %s: %w", lang, err)
		}
		b.dict[lang] = m
	}
	return b, nil
}

// MustLoad is Load for package-level wiring; the tables are embedded so a
// failure is a build defect.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// T returns the message for key in lang, falling back to English and then to the key.
func (b *Bundle) T(lang, key string) string {
	if m, ok := b.dict[Normalize(lang)]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := b.dict[English][key]; ok {
		return v
	}
	return key
}

// Normalize maps any BCP 47 tag onto a supported language, defaulting to English.
func Normalize(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return English
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return English
	}
	return match(parsed)
}

// Supported reports whether tag names a supported language exactly.
func Supported(tag string) bool {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return false
	}
	base, _ := parsed.Base()
	return base.String() == English || base.String() == Arabic
}

// FromAcceptLanguage resolves an Accept-Language header.
func FromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	if idx == 1 {
		return Arabic
	}
	return English
}

func match(tag language.Tag) string {
	_, idx, conf := matcher.Match(tag)
	if conf == language.No || idx != 1 {
		return English
	}
	return Arabic
}

// Direction returns the text direction for a language.
func Direction(lang string) string {
	if Normalize(lang) == Arabic {
		return "rtl"
	}
	return "ltr"
}
