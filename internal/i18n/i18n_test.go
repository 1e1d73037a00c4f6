package i18n

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		prefs    []string
		expected string
	}{
		{"No preference", nil, "it"},
		{"Empty header", []string{""}, "it"},
		{"English", []string{"en-US,en;q=0.9"}, "en"},
		{"Swiss French", []string{"fr-CH"}, "fr"},
		{"Swiss German with fallback", []string{"de-CH,de;q=0.9,en;q=0.5"}, "de"},
		{"Unsupported falls back", []string{"es-ES"}, "it"},
		{"Query before header", []string{"de", "en"}, "de"},
		{"Garbage then header", []string{"!!", "fr"}, "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.prefs...).Language(); got != tt.expected {
				t.Errorf("Match(%v).Language() = %s, expected %s", tt.prefs, got, tt.expected)
			}
		})
	}
}

func TestTextTranslatesEveryMessage(t *testing.T) {
	for id, texts := range translations {
		for i, tag := range Supported {
			got := New(tag).Text(id, 1, 2)
			if got == string(id) {
				t.Errorf("message %s missing for %s", id, tag)
			}
			prefix := texts[i]
			if cut := strings.Index(prefix, "%"); cut >= 0 {
				prefix = prefix[:cut]
			}
			if !strings.HasPrefix(got, prefix) {
				t.Errorf("message %s for %s = %q, expected prefix %q", id, tag, got, prefix)
			}
		}
	}
}

func TestTextFormatsArguments(t *testing.T) {
	got := New(language.English).Text(AgeOutOfRange, 18, 100)
	if got != "The applicant must be between 18 and 100 years old" {
		t.Errorf("unexpected text %q", got)
	}
	got = New(language.Italian).Text(DocumentMissing, "Contratto di credito")
	if got != "Documento obbligatorio mancante: Contratto di credito" {
		t.Errorf("unexpected text %q", got)
	}
}
