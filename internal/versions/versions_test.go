package versions

import "testing"

func TestResolveCode(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		wantCode string
		wantOK   bool
	}{
		{"exact", "lsg", "lsg", true},
		{"exact case-insensitive", "Louis Segond 1910", "lsg", true},
		{"surrounding whitespace", "  kjv  ", "kjv", true},
		{"version name contains known name", "la sainte bible louis segond 1910 edition", "lsg", true},
		{"known name contains version name", "segond", "lsg", true},
		{"cyrillic name", "Синодальный перевод", "syn", true},
		{"unknown", "totally unknown version", "", false},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ResolveCode(tt.version)
			if code != tt.wantCode || ok != tt.wantOK {
				t.Errorf("ResolveCode(%q) = (%q, %v), want (%q, %v)", tt.version, code, ok, tt.wantCode, tt.wantOK)
			}
		})
	}
}

func TestDefaultForLanguage(t *testing.T) {
	tests := []struct {
		language string
		want     string
	}{
		{"fr", "lsg"},
		{"EN", "kjv"},
		{"es", "rvr"},
		{"el", "gr"},
		{"xx", "lsg"},
		{"", "lsg"},
	}

	for _, tt := range tests {
		if got := DefaultForLanguage(tt.language); got != tt.want {
			t.Errorf("DefaultForLanguage(%q) = %q, want %q", tt.language, got, tt.want)
		}
	}
}

func TestResolvePrecedence(t *testing.T) {
	// An explicit translation code always wins, even over a resolvable
	// version name.
	if got := Resolve("KJV", "Louis Segond 1910", "fr"); got != "kjv" {
		t.Errorf("explicit translation ignored, got %q", got)
	}
	if got := Resolve("", "King James Version", "fr"); got != "kjv" {
		t.Errorf("version name ignored, got %q", got)
	}
	if got := Resolve("", "no such version", "de"); got != "sch" {
		t.Errorf("language default ignored, got %q", got)
	}
	if got := Resolve("", "", ""); got != "lsg" {
		t.Errorf("fallback translation ignored, got %q", got)
	}
}
