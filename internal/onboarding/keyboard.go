package onboarding

import "jobseeker-bot/internal/region"

// Language button labels. They are fixed and not localized.
const (
	LabelUzbek   = "🇺🇿 O'zbekcha"
	LabelRussian = "🇷🇺 Русский"
)

// Keyboard is a reply keyboard: rows of button labels. Remove hides any keyboard.
type Keyboard struct {
	Rows    [][]string
	OneTime bool
	Resize  bool
	Remove  bool
}

// RemoveKeyboard hides the current keyboard.
func RemoveKeyboard() *Keyboard {
	return &Keyboard{Remove: true}
}

// LanguageKeyboard offers the two supported languages on one row.
func LanguageKeyboard() *Keyboard {
	return &Keyboard{
		Rows:    [][]string{{LabelUzbek, LabelRussian}},
		OneTime: true,
		Resize:  true,
	}
}

// SkipKeyboard is a single skip button.
func SkipKeyboard(label string) *Keyboard {
	return &Keyboard{
		Rows:    [][]string{{label}},
		OneTime: true,
		Resize:  true,
	}
}

// RegionKeyboard lays out the region labels for lang two per row, in catalog order.
func RegionKeyboard(regions *region.Catalog, lang string) *Keyboard {
	labels := regions.Labels(lang)
	rows := make([][]string, 0, (len(labels)+1)/2)
	for i := 0; i < len(labels); i += 2 {
		end := i + 2
		if end > len(labels) {
			end = len(labels)
		}
		rows = append(rows, labels[i:end])
	}
	return &Keyboard{Rows: rows, OneTime: true, Resize: true}
}
