package cmd

import "testing"

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"page path unchanged", "FitNesseRoot/AccounT/LoginFeature", "FitNesseRoot/AccounT/LoginFeature"},
		{"ANSI escape replaced", "features/\x1b[2J/login.feature", "features/?[2J/login.feature"},
		{"newline replaced", "features/with\nnewline.feature", "features/with?newline.feature"},
		{"DEL replaced", "a\x7fb", "a?b"},
		{"unicode kept", "features/café.feature", "features/café.feature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizePath(tt.input); got != tt.want {
				t.Errorf("sanitizePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
