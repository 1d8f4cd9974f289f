// Package translator holds message catalogs for the active languages and
// resolves language preferences.
package translator

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// ServiceName is the container service holding the *Translator.
const ServiceName = "translator"

// ErrUnknownLanguage is returned for a language that is not active.
var ErrUnknownLanguage = errors.New("unknown language")

// Translator translates message keys. It is safe for concurrent use.
type Translator struct {
	mu sync.RWMutex

	builder     *catalog.Builder
	idents      []string
	tags        map[string]language.Tag
	defaultLang string
	fallbacks   []string
	matcher     language.Matcher
	// known records which keys each language defines.
	known map[string]map[string]struct{}
}

// New creates a translator for the given language idents. defaultLang must be
// one of them; an empty value picks the first language.
func New(languages []string, defaultLang string, fallbacks []string) (*Translator, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("%w: no languages", ErrUnknownLanguage)
	}
	if defaultLang == "" {
		defaultLang = languages[0]
	}
	if !slices.Contains(languages, defaultLang) {
		return nil, fmt.Errorf("%w: default language %q is not active", ErrUnknownLanguage, defaultLang)
	}

	t := &Translator{
		idents:      slices.Clone(languages),
		tags:        make(map[string]language.Tag, len(languages)),
		defaultLang: defaultLang,
		known:       make(map[string]map[string]struct{}, len(languages)),
	}
	for _, ident := range languages {
		tag, err := language.Parse(ident)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnknownLanguage, ident, err)
		}
		t.tags[ident] = tag
		t.known[ident] = map[string]struct{}{}
	}
	for _, f := range fallbacks {
		if _, ok := t.tags[f]; ok && f != defaultLang {
			t.fallbacks = append(t.fallbacks, f)
		}
	}

	t.builder = catalog.NewBuilder(catalog.Fallback(t.tags[defaultLang]))

	// the matcher falls back to its first entry
	supported := []language.Tag{t.tags[defaultLang]}
	for _, ident := range t.idents {
		if ident != defaultLang {
			supported = append(supported, t.tags[ident])
		}
	}
	t.matcher = language.NewMatcher(supported)
	return t, nil
}

// Languages returns the active language idents.
func (t *Translator) Languages() []string {
	return slices.Clone(t.idents)
}

// DefaultLanguage returns the default language ident.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

// HasLanguage reports whether lang is active.
func (t *Translator) HasLanguage(lang string) bool {
	_, ok := t.tags[lang]
	return ok
}

// AddMessages adds key -> text pairs for lang. Text is a format string.
func (t *Translator) AddMessages(lang string, messages map[string]string) error {
	tag, ok := t.tags[lang]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for key, text := range messages {
		if err := t.builder.SetString(tag, key, text); err != nil {
			return fmt.Errorf("failed to add message %q for %q: %w", key, lang, err)
		}
		t.known[lang][key] = struct{}{}
	}
	return nil
}

// Has reports whether key is defined for lang.
func (t *Translator) Has(key, lang string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.known[lang][key]
	return ok
}

// Translate returns the text of key in lang, then in each fallback language,
// then in the default language. A lang that is not active is replaced by the
// default language, which is then tried before the fallbacks. A key found
// nowhere is returned unchanged.
func (t *Translator) Translate(key, lang string, args ...any) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, candidate := range t.chain(lang) {
		if _, ok := t.known[candidate][key]; ok {
			return message.NewPrinter(t.tags[candidate], message.Catalog(t.builder)).Sprintf(key, args...)
		}
	}
	return key
}

func (t *Translator) chain(lang string) []string {
	if _, ok := t.tags[lang]; !ok {
		lang = t.defaultLang
	}
	out := make([]string, 0, len(t.fallbacks)+2)
	out = append(out, lang)
	out = append(out, t.fallbacks...)
	return append(out, t.defaultLang)
}

// Match picks the active language best matching an Accept-Language header.
func (t *Translator) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return t.defaultLang
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.defaultLang
	}
	_, idx, conf := t.matcher.Match(prefs...)
	if conf == language.No {
		return t.defaultLang
	}
	if idx == 0 {
		return t.defaultLang
	}
	// entries after the first follow t.idents with the default removed
	rest := slices.DeleteFunc(slices.Clone(t.idents), func(s string) bool { return s == t.defaultLang })
	return rest[idx-1]
}
