package message

import (
	"embed"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/nao1215/anonyreport/internal/model"
)

//go:embed locales/*.toml
var locales embed.FS

// Message identifiers.
const (
	IDSelectOption      = "select-option"
	IDPreparingSystem   = "preparing-system"
	IDConnectingServer  = "connecting-server"
	IDLocationMissing   = "location-missing"
	IDConnectionError   = "connection-error"
	IDServerError       = "server-error"
	IDSubmitting        = "submitting"
	IDSubmitted         = "submitted"
	IDAlreadyCompleted  = "already-completed"
	IDLoading           = "loading"
	IDLoadError         = "load-error"
	IDSelectPrompt      = "select-prompt"
	IDSelectParentFirst = "select-parent-first"
	IDHintNavigation    = "hint-navigation"
	IDHintLocation      = "hint-location"
	IDButtonSubmit      = "button-submit"
	IDReadinessReady    = "readiness-ready"
	IDReadinessDown     = "readiness-unreachable"
)

// DefaultLanguage is the language the questionnaire is written in.
const DefaultLanguage = "es"

// ErrUnsupportedLanguage is returned for languages without a message file.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// supported lists the embedded message files.
var supported = map[string]string{
	"es": "locales/active.es.toml",
	"en": "locales/active.en.toml",
}

// Catalog holds every embedded message file.
type Catalog struct {
	bundle *i18n.Bundle
}

// NewCatalog loads the embedded message files.
func NewCatalog() (*Catalog, error) {
	bundle := i18n.NewBundle(language.Spanish)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for lang, path := range supported {
		if _, err := bundle.LoadMessageFileFS(locales, path); err != nil {
			return nil, fmt.Errorf("failed to load %s messages: %w", lang, err)
		}
	}

	return &Catalog{bundle: bundle}, nil
}

// Supported reports whether lang has a message file.
func Supported(lang string) bool {
	_, ok := supported[lang]
	return ok
}

// Localizer returns a localizer for lang, falling back to Spanish for
// messages missing in lang.
func (c *Catalog) Localizer(lang string) (*Localizer, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	if !Supported(lang) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return &Localizer{loc: i18n.NewLocalizer(c.bundle, lang, DefaultLanguage)}, nil
}

// Localizer renders messages in one language.
type Localizer struct {
	loc *i18n.Localizer
}

// T renders the message id with optional template data.
// Unknown ids render as the id itself so a missing translation never hides
// an error from the respondent.
func (l *Localizer) T(id string, data map[string]any) string {
	s, err := l.loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil || s == "" {
		return id
	}
	return s
}

// Notice renders a notice; a clearing notice renders as "".
func (l *Localizer) Notice(n model.Notice) string {
	if n.IsClear() {
		return ""
	}
	return l.T(n.MessageID, n.Data)
}
