// Package versions maps human-facing Bible version names onto the lowercase
// translation codes used by the verses collection.
package versions

import (
	"sort"
	"strings"
)

// versionNameToCode maps version names as they appear in user profiles onto
// translation codes. Keys are matched case-insensitively.
var versionNameToCode = map[string]string{
	// French
	"la bible de l'épée": "lsg",
	"louis segond 1910":  "lsg",
	"lsg":                "lsg",

	// English
	"king james version":  "kjv",
	"kjv":                 "kjv",
	"basic english bible": "bbe",
	"bbe":                 "bbe",

	// Spanish
	"reina valera": "rvr",
	"rvr":          "rvr",

	// German
	"schlachter": "sch",
	"sch":        "sch",

	// Portuguese
	"nova versão internacional": "nvi",
	"nvi":                       "nvi",

	// Russian
	"синодальный перевод": "syn",
	"syn":                 "syn",

	// Chinese
	"chinese union version": "cuv",
	"cuv":                   "cuv",

	// Arabic
	"arabic bible": "svd",
	"svd":          "svd",

	// Korean
	"korean bible": "ko",
	"ko":           "ko",

	// Vietnamese
	"vietnamese bible": "vi",
	"vi":               "vi",

	// Finnish
	"finnish bible": "fi",
	"fi":            "fi",

	// Romanian
	"cornilescu": "ro",
	"ro":         "ro",

	// Greek
	"greek bible": "gr",
	"gr":          "gr",

	// Esperanto
	"esperanto bible": "eo",
	"eo":              "eo",
}

// languageDefaults maps a language code onto the default translation for
// requests that specify neither a translation nor a version name.
var languageDefaults = map[string]string{
	"fr": "lsg",
	"en": "kjv",
	"es": "rvr",
	"de": "sch",
	"pt": "nvi",
	"ru": "syn",
	"zh": "cuv",
	"ar": "svd",
	"ko": "ko",
	"vi": "vi",
	"fi": "fi",
	"ro": "ro",
	"el": "gr",
	"eo": "eo",
}

const fallbackTranslation = "lsg"

// orderedNames keeps substring matching deterministic across processes
var orderedNames = func() []string {
	names := make([]string, 0, len(versionNameToCode))
	for name := range versionNameToCode {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// ResolveCode converts a version name into a translation code. Matching is
// exact (case-insensitive) first, then substring in either direction.
func ResolveCode(versionName string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(versionName))
	if name == "" {
		return "", false
	}

	if code, ok := versionNameToCode[name]; ok {
		return code, true
	}

	for _, known := range orderedNames {
		if strings.Contains(name, known) || strings.Contains(known, name) {
			return versionNameToCode[known], true
		}
	}
	return "", false
}

// DefaultForLanguage returns the default translation code for a language
func DefaultForLanguage(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if code, ok := languageDefaults[lang]; ok {
		return code
	}
	return fallbackTranslation
}

// Resolve picks the translation code for a request: an explicit code wins,
// then a resolvable version name, then the language default.
func Resolve(translation, versionName, language string) string {
	if code := strings.ToLower(strings.TrimSpace(translation)); code != "" {
		return code
	}
	if code, ok := ResolveCode(versionName); ok {
		return code
	}
	return DefaultForLanguage(language)
}
