package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localizedata embed.FS

const (
	Ru = "ru"
	En = "en"
)

// Fallback is used when a sender's language has no catalog
const Fallback = En

// Supported lists the languages that have a catalog, fallback first
var Supported = []string{En, Ru}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Russian})

// MatchLanguage normalizes a client language tag ("ru-RU", "en", "") to a supported language
func MatchLanguage(tag string) string {
	if tag == "" {
		return Fallback
	}

	t, err := language.Parse(tag)
	if err != nil {
		return Fallback
	}

	_, idx, conf := matcher.Match(t)
	if conf == language.No || idx < 0 || idx >= len(Supported) {
		return Fallback
	}

	return Supported[idx]
}

type locale struct {
	locale string
}

type Locale interface {
	GetLocale() string
}

func NewLocale(l string) Locale {
	return &locale{
		locale: l,
	}
}

func (l *locale) GetLocale() string {
	return l.locale
}

type localizer struct {
	Locale
	*i18n.Localizer
}

type Localizer interface {
	Locale
	MustLocalize(id string) string
	MustLocalizeWithTemplate(id string, fields ...string) string
	LocalizeWithTemplate(id string, fields ...string) (string, error)
}

// NewBundle loads the embedded translation files into a go-i18n bundle
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, lang := range Supported {
		f := lang + ".json"
		data, err := localizedata.ReadFile(fmt.Sprintf("locales/%s", f))
		if err != nil {
			return nil, fmt.Errorf("failed to load translation data: %s", f)
		}

		if _, err := bundle.ParseMessageFileBytes(data, f); err != nil {
			return nil, fmt.Errorf("failed to parse translation data %s: %w", f, err)
		}
	}

	return bundle, nil
}

// NewLocalizer creates a localizer for one language. Messages missing in that
// language resolve from the fallback language.
func NewLocalizer(bundle *i18n.Bundle, locale Locale) Localizer {
	return &localizer{
		locale,
		i18n.NewLocalizer(bundle, locale.GetLocale(), Fallback),
	}
}

func (l *localizer) MustLocalize(id string) string {
	return l.Localizer.MustLocalize(createLocalizeConfig(id))
}

func (l *localizer) MustLocalizeWithTemplate(id string, fields ...string) string {
	return l.Localizer.MustLocalize(createLocalizeConfigWithTemplate(id, fields...))
}

func (l *localizer) LocalizeWithTemplate(id string, fields ...string) (string, error) {
	return l.Localizer.Localize(createLocalizeConfigWithTemplate(id, fields...))
}

func createLocalizeConfig(id string) *i18n.LocalizeConfig {
	return &i18n.LocalizeConfig{
		MessageID: id,
	}
}

func createLocalizeConfigWithTemplate(id string, fields ...string) *i18n.LocalizeConfig {
	td := make(map[string]interface{}, len(fields))

	for i, f := range fields {
		td["f"+strconv.Itoa(i+1)] = f
	}

	return &i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: td,
	}
}

// Catalog holds one immutable localizer per supported language
type Catalog struct {
	localizers map[string]Localizer
}

// NewCatalog builds localizers for every supported language from the embedded files
func NewCatalog() (*Catalog, error) {
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}

	localizers := make(map[string]Localizer, len(Supported))
	for _, lang := range Supported {
		localizers[lang] = NewLocalizer(bundle, NewLocale(lang))
	}

	return &Catalog{localizers: localizers}, nil
}

// For returns the localizer for a language, falling back to English
func (c *Catalog) For(lang string) Localizer {
	if l, ok := c.localizers[lang]; ok {
		return l
	}
	return c.localizers[Fallback]
}
