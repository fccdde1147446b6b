// Package i18n provides the localized console messages.
//
// Message catalogs live in locales/active.<lang>.toml and are embedded in
// the binary. English is the fallback for unknown languages and for
// messages missing from a catalog.
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	golocale "github.com/jeandeaual/go-locale"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// EnvVar overrides the system language when no language is configured.
const EnvVar = "SPLASH_LANG"

//go:embed locales/*.toml
var localeFS embed.FS

var bundle = mustBundle()

func mustBundle() *goi18n.Bundle {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	files, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		panic(err)
	}
	for _, f := range files {
		if _, err := b.LoadMessageFileFS(localeFS, f); err != nil {
			panic(err)
		}
	}
	return b
}

// Supported returns the languages with a message catalog, English first.
func Supported() []language.Tag {
	return bundle.LanguageTags()
}

// Match returns the supported language closest to lang. POSIX locale
// names such as "ja_JP.UTF-8" are accepted. Unknown input yields English.
func Match(lang string) language.Tag {
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	t, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return language.English
	}
	tags := bundle.LanguageTags()
	_, idx, conf := language.NewMatcher(tags).Match(t)
	if conf == language.No {
		return language.English
	}
	return tags[idx]
}

// Detect picks the language to use: the first non-empty preferred value,
// then $SPLASH_LANG, then the system locale, then English.
func Detect(preferred ...string) string {
	for _, p := range preferred {
		if p != "" {
			return p
		}
	}
	if v := os.Getenv(EnvVar); v != "" {
		return v
	}
	if l, err := golocale.GetLocale(); err == nil && l != "" {
		return l
	}
	return language.English.String()
}

// Localizer renders messages in one language.
type Localizer struct {
	loc *goi18n.Localizer
}

// New returns a Localizer for the supported language closest to lang.
func New(lang string) *Localizer {
	return &Localizer{loc: goi18n.NewLocalizer(bundle, Match(lang).String())}
}

// T renders message id with data as template values. Unknown ids are
// returned unchanged so a missing translation never hides output.
func (l *Localizer) T(id string, data map[string]any) string {
	s, err := l.loc.Localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if s == "" && err != nil {
		return id
	}
	return s
}
