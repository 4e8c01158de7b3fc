// Package i18n resolves (language, key, params) to display text from embedded YAML catalogs.
// Lookups fall back to BaseLocale and finally to the key itself, so a missing translation
// never blanks a prompt.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
)

// BaseLocale is the fallback locale; its catalog must define every key.
const BaseLocale = "ru"

// Params are substituted into "{name}" placeholders.
type Params map[string]string

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the messages of every loaded locale.
type Catalog struct {
	locales map[string]map[string]string
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

// LoadEmbedded loads the catalogs shipped with the binary.
func LoadEmbedded() (*Catalog, error) {
	return LoadFromFS(embeddedFS)
}

// MustLoadEmbedded is LoadEmbedded for package-level fixtures; it panics on a broken catalog.
func MustLoadEmbedded() *Catalog {
	c, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFromFS loads every locales/*.yaml file from fsys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	c := &Catalog{locales: map[string]map[string]string{}}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		locale, err := normalize(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		if _, exists := c.locales[locale]; exists {
			return nil, fmt.Errorf("catalog %s: locale %q already defined", path, locale)
		}
		if len(file.Messages) == 0 {
			return nil, fmt.Errorf("catalog %s: messages map is required", path)
		}
		c.locales[locale] = file.Messages
	}

	base, ok := c.locales[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	for locale, messages := range c.locales {
		for key := range messages {
			if _, ok := base[key]; !ok {
				return nil, fmt.Errorf("catalog %s: key %q missing from base locale", locale, key)
			}
		}
	}
	return c, nil
}

// normalize reduces a BCP 47 tag to its base language ("uz-Latn-UZ" -> "uz").
func normalize(locale string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// Languages returns the loaded locale codes, sorted.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.locales))
	for locale := range c.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the raw message for key in lang, falling back to BaseLocale.
func (c *Catalog) Lookup(lang, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if locale, err := normalize(lang); err == nil {
		if msg, ok := c.locales[locale][key]; ok {
			return msg, true
		}
	}
	msg, ok := c.locales[BaseLocale][key]
	return msg, ok
}

// Text renders key in lang with params substituted. An empty lang means BaseLocale.
// Unknown keys render as the key itself.
func (c *Catalog) Text(lang, key string, params Params) string {
	msg, ok := c.Lookup(lang, key)
	if !ok {
		msg = key
	}
	if len(params) == 0 {
		return msg
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", params[name])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Variants returns the message for key in every loaded locale, deduplicated.
// Used to accept a button label typed in a language other than the session's.
func (c *Catalog) Variants(key string) []string {
	seen := map[string]bool{}
	var out []string
	for _, locale := range c.Languages() {
		if msg, ok := c.locales[locale][key]; ok && !seen[msg] {
			seen[msg] = true
			out = append(out, msg)
		}
	}
	return out
}
