package handler

import (
	"net/http"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/translator"
)

// Message keys of the maintenance response
const (
	KeyMaintenanceTitle  = "maintenance.title"
	KeyMaintenanceNotice = "maintenance.notice"
)

// LangParam is the query parameter that selects the response language.
const LangParam = "lang"

// MaintenanceMessages are the maintenance texts per language.
var MaintenanceMessages = map[string]map[string]string{
	"en": {
		KeyMaintenanceTitle:  "Down for maintenance!",
		KeyMaintenanceNotice: "We are currently unavailable. Check back in 15 minutes.",
	},
	"fr": {
		KeyMaintenanceTitle:  "En maintenance!",
		KeyMaintenanceNotice: "Nous sommes actuellement indisponible. Revenez en 15 minutes.",
	},
	"es": {
		KeyMaintenanceTitle:  "¡Fuera de servicio por mantenimiento!",
		KeyMaintenanceNotice: "Estamos actualmente fuera de servicio. Vuelve en 15 minutos.",
	},
}

// AddMaintenanceMessages adds MaintenanceMessages for every active language of
// tr that does not define them yet.
func AddMaintenanceMessages(tr *translator.Translator) error {
	for lang, msgs := range MaintenanceMessages {
		if !tr.HasLanguage(lang) {
			continue
		}
		missing := map[string]string{}
		for k, v := range msgs {
			if !tr.Has(k, lang) {
				missing[k] = v
			}
		}
		if err := tr.AddMessages(lang, missing); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown answers every request with 503 while the application is down
// for maintenance.
type Shutdown struct {
	tr *translator.Translator
}

// NewShutdown creates the maintenance handler. A nil translator uses the
// built-in en, fr and es messages with en as default.
func NewShutdown(tr *translator.Translator) (*Shutdown, error) {
	if tr == nil {
		var err error
		tr, err = translator.New([]string{"en", "fr", "es"}, "en", nil)
		if err != nil {
			return nil, err
		}
	}
	if err := AddMaintenanceMessages(tr); err != nil {
		return nil, err
	}
	return &Shutdown{tr: tr}, nil
}

func (s *Shutdown) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down-for-maintenance"))
		return
	}

	lang := s.language(r)
	title := s.tr.Translate(KeyMaintenanceTitle, lang)
	notice := s.tr.Translate(KeyMaintenanceNotice, lang)
	w.Header().Set("Retry-After", "900")
	writeMessage(w, r, http.StatusServiceUnavailable, title, notice)
}

// language prefers the lang query parameter over Accept-Language.
func (s *Shutdown) language(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get(LangParam)); lang != "" && s.tr.HasLanguage(lang) {
		return lang
	}
	return s.tr.Match(r.Header.Get("Accept-Language"))
}
