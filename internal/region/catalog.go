// Package region holds the fixed list of regions offered at the region step.
package region

import (
	_ "embed"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// DefaultLanguage is used when a label is requested for a language the catalog does not carry.
const DefaultLanguage = "ru"

// Region is one catalog entry: a canonical key and its display label per language.
type Region struct {
	Key    string            `yaml:"key"`
	Labels map[string]string `yaml:"labels"`
}

type catalogFile struct {
	Languages []string `yaml:"languages"`
	Regions   []Region `yaml:"regions"`
}

// Catalog is immutable after load and safe for concurrent use.
type Catalog struct {
	regions []Region
	byKey   map[string]Region
	byLabel map[string]string
}

//go:embed regions.yaml
var embeddedRegions []byte

// LoadEmbedded parses the catalog shipped with the binary.
func LoadEmbedded() (*Catalog, error) {
	return Parse(embeddedRegions)
}

// MustLoadEmbedded is LoadEmbedded for package-level fixtures; it panics on a broken catalog.
func MustLoadEmbedded() *Catalog {
	c, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a Catalog from YAML. Every region must carry a label for every declared
// language, and a label may not resolve to two different keys.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse region catalog: %w", err)
	}
	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("region catalog: languages are required")
	}
	if len(file.Regions) == 0 {
		return nil, fmt.Errorf("region catalog: no regions defined")
	}

	c := &Catalog{
		regions: file.Regions,
		byKey:   make(map[string]Region, len(file.Regions)),
		byLabel: map[string]string{},
	}
	for _, r := range file.Regions {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			return nil, fmt.Errorf("region catalog: region key cannot be blank")
		}
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("region catalog: duplicate key %q", key)
		}
		for _, lang := range file.Languages {
			label := r.Labels[lang]
			if label == "" {
				return nil, fmt.Errorf("region catalog: %q has no %s label", key, lang)
			}
			if other, ok := c.byLabel[label]; ok && other != key {
				return nil, fmt.Errorf("region catalog: label %q used by %q and %q", label, other, key)
			}
			c.byLabel[label] = key
		}
		c.byKey[key] = r
	}
	return c, nil
}

// Regions returns the entries in catalog order.
func (c *Catalog) Regions() []Region {
	out := make([]Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// Label returns the display label of key in lang, falling back to DefaultLanguage.
func (c *Catalog) Label(key, lang string) (string, bool) {
	r, ok := c.byKey[key]
	if !ok {
		return "", false
	}
	if label, ok := r.Labels[lang]; ok {
		return label, true
	}
	label, ok := r.Labels[DefaultLanguage]
	return label, ok
}

// Labels returns every region's label in lang, in catalog order.
func (c *Catalog) Labels(lang string) []string {
	out := make([]string, 0, len(c.regions))
	for _, r := range c.regions {
		label, _ := c.Label(r.Key, lang)
		out = append(out, label)
	}
	return out
}

// Resolve maps a label in any supported language back to its canonical key.
// Matching is exact and case-sensitive.
func (c *Catalog) Resolve(label string) (string, bool) {
	key, ok := c.byLabel[label]
	return key, ok
}
