// Package i18n loads locale message catalogs and renders battle log lines
// through golang.org/x/text/message.
package i18n

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the fallback locale every bundle must define.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	locales map[string]map[string]string
}

// LoadDir loads every <dir>/<locale>/<namespace>.yaml catalog file.
func LoadDir(dir string) (*Bundle, error) {
	return LoadFromFS(os.DirFS(dir))
}

// LoadFromFS loads catalog files matching */*.yaml from fsys.
//
// Postcondition: Returns a Bundle defining BaseLocale, or an error.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	slices.Sort(paths)

	b := &Bundle{locales: map[string]map[string]string{}}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := b.addFile(path, f); err != nil {
			return nil, err
		}
	}
	if !b.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) addFile(path string, f catalogFile) error {
	localeFromPath := filepath.Base(filepath.Dir(path))
	namespaceFromPath := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	locale := strings.TrimSpace(f.Locale)
	if locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", path, locale, localeFromPath)
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}
	if strings.TrimSpace(f.Namespace) != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename namespace %q", path, f.Namespace, namespaceFromPath)
	}
	if f.Messages == nil {
		return fmt.Errorf("catalog %s: messages map is required", path)
	}

	msgs, ok := b.locales[locale]
	if !ok {
		msgs = map[string]string{}
		b.locales[locale] = msgs
	}
	for key, value := range f.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if _, exists := msgs[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", path, key, locale)
		}
		msgs[key] = value
	}
	return nil
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns all available locale identifiers in sorted order.
func (b *Bundle) Locales() []string {
	return slices.Sorted(maps.Keys(b.locales))
}

// Localizer renders message keys for one locale, falling back to BaseLocale
// for keys the locale does not define. It implements battle.Localizer.
type Localizer struct {
	printer *message.Printer
	known   map[string]bool
}

// Localizer builds a Localizer for locale.
//
// Postcondition: Returns an error iff locale is not in the bundle.
func (b *Bundle) Localizer(locale string) (*Localizer, error) {
	locale = strings.TrimSpace(locale)
	if !b.HasLocale(locale) {
		return nil, fmt.Errorf("i18n: unknown locale %q (have %v)", locale, b.Locales())
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("i18n: parse locale %q: %w", locale, err)
	}

	builder := catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))
	known := map[string]bool{}
	for _, l := range []string{BaseLocale, locale} {
		msgs := b.locales[l]
		for _, key := range slices.Sorted(maps.Keys(msgs)) {
			if err := builder.SetString(tag, key, msgs[key]); err != nil {
				return nil, fmt.Errorf("i18n: set %q for %s: %w", key, l, err)
			}
			known[key] = true
		}
	}
	return &Localizer{
		printer: message.NewPrinter(tag, message.Catalog(builder)),
		known:   known,
	}, nil
}

// Text implements battle.Localizer. Unknown keys render as the key itself.
func (l *Localizer) Text(key string, args ...any) string {
	if !l.known[key] {
		return key
	}
	return l.printer.Sprintf(key, args...)
}
