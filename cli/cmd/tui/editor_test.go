package tui

import "testing"

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		name   string
		visual string
		editor string
		want   string
	}{
		{"default", "", "", defaultEditor},
		{"editor", "", "nano", "nano"},
		{"visual wins", "code --wait", "nano", "code --wait"},
		{"blank visual", "  ", "nano", "nano"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VISUAL", tt.visual)
			t.Setenv("EDITOR", tt.editor)

			if got := editorCommand(); got != tt.want {
				t.Errorf("editorCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrimEditorText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"abc\n", "abc"},
		{"abc\r\n", "abc"},
		{"abc\n\n", "abc\n"},
		{"a\nb\n", "a\nb"},
	}

	for _, tt := range tests {
		if got := trimEditorText(tt.in); got != tt.want {
			t.Errorf("trimEditorText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
