package i18n

import (
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	if got, want := c.Languages(), []string{"ru", "uz"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Languages = %v, want %v", got, want)
	}
}

func TestEmbeddedCatalogsDefineSameKeys(t *testing.T) {
	c := MustLoadEmbedded()
	for key := range c.locales[BaseLocale] {
		if _, ok := c.locales["uz"][key]; !ok {
			t.Errorf("uz catalog missing key %q", key)
		}
	}
}

func TestText_Params(t *testing.T) {
	c := MustLoadEmbedded()
	got := c.Text("ru", "profile_completed", Params{"id": "42"})
	if !strings.Contains(got, "42") || strings.Contains(got, "{id}") {
		t.Errorf("Text = %q, want id substituted", got)
	}
}

func TestText_FallbackToBaseLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/ru.yaml": {Data: []byte("locale: ru\nmessages:\n  hello: \"Привет\"\n  only_ru: \"только\"\n")},
		"locales/uz.yaml": {Data: []byte("locale: uz\nmessages:\n  hello: \"Salom\"\n")},
	}
	c, err := LoadFromFS(fsys)
	if err != nil {
		t.Fatalf("LoadFromFS: %v", err)
	}
	testCases := []struct {
		name, lang, key, want string
	}{
		{"exact", "uz", "hello", "Salom"},
		{"regional tag", "uz-Latn-UZ", "hello", "Salom"},
		{"missing key falls back", "uz", "only_ru", "только"},
		{"empty lang is base", "", "hello", "Привет"},
		{"unknown lang is base", "fr", "hello", "Привет"},
		{"unknown key renders key", "uz", "nope", "nope"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Text(tc.lang, tc.key, nil); got != tc.want {
				t.Errorf("Text(%q, %q) = %q, want %q", tc.lang, tc.key, got, tc.want)
			}
		})
	}
}

func TestLoadFromFS_Errors(t *testing.T) {
	testCases := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"no files", fstest.MapFS{}},
		{"missing base", fstest.MapFS{
			"locales/uz.yaml": {Data: []byte("locale: uz\nmessages:\n  a: \"b\"\n")},
		}},
		{"key not in base", fstest.MapFS{
			"locales/ru.yaml": {Data: []byte("locale: ru\nmessages:\n  a: \"b\"\n")},
			"locales/uz.yaml": {Data: []byte("locale: uz\nmessages:\n  c: \"d\"\n")},
		}},
		{"empty messages", fstest.MapFS{
			"locales/ru.yaml": {Data: []byte("locale: ru\n")},
		}},
		{"bad locale", fstest.MapFS{
			"locales/ru.yaml": {Data: []byte("locale: \"not a tag!\"\nmessages:\n  a: \"b\"\n")},
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadFromFS(tc.fsys); err == nil {
				t.Fatal("LoadFromFS should fail")
			}
		})
	}
}

func TestVariants(t *testing.T) {
	c := MustLoadEmbedded()
	got := c.Variants("btn_skip")
	if len(got) != 2 {
		t.Fatalf("Variants(btn_skip) = %v, want one label per locale", got)
	}
	shared := c.Variants("choose_language")
	if len(shared) != 1 {
		t.Errorf("Variants(choose_language) = %v, want deduplicated single entry", shared)
	}
}
