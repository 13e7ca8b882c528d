package api

import (
	_ "embed"
	"fmt"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
	json "github.com/goccy/go-json"
)

//go:embed translations.json
var translationsJSON []byte

// translations maps a language to its UI string table.
var translations = mustLoadTranslations(translationsJSON)

func mustLoadTranslations(data []byte) map[domain.Language]map[string]string {
	var raw map[domain.Language]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		panic(fmt.Sprintf("decode embedded translations: %v", err))
	}
	for _, lang := range domain.Languages {
		if _, ok := raw[lang]; !ok {
			panic(fmt.Sprintf("embedded translations missing %q", lang))
		}
	}
	return raw
}

// Translations returns the string table for lang, falling back to English
// for unknown languages. The returned map must not be modified.
func Translations(lang domain.Language) map[string]string {
	if t, ok := translations[lang]; ok {
		return t
	}
	return translations[domain.English]
}
