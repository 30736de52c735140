package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Nightfall", "Nightfall"},
		{"slash", "AC/DC", "AC-DC"},
		{"backslash", `a\b`, "a-b"},
		{"colon", "12:34", "12-34"},
		{"question", "What?", "What-"},
		{"quotes and brackets", `"title" <x>`, "-title- -x-"},
		{"pipe and star", "a|b*c", "a-b-c"},
		{"trailing dots", "song...", "song"},
		{"trailing space", "song  ", "song"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePathKeepsSeparators(t *testing.T) {
	got := SanitizePath("AC/DC") // already split by the template engine
	if got != "AC/DC" {
		t.Fatalf("SanitizePath should not touch separators: got %q", got)
	}
	got = SanitizePath("Artist./Album?/01. Song.")
	want := "Artist/Album-/01. Song"
	if got != want {
		t.Fatalf("SanitizePath = %q, want %q", got, want)
	}
}
