package textutil

import "testing"

func TestFoldDiacritics(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"swedish ring", "Björk", "Bjork"},
		{"acute accents", "Café Tacvba", "Cafe Tacvba"},
		{"combining sequence", "Sigur Rós", "Sigur Ros"},
		{"plain ascii unchanged", "Radiohead", "Radiohead"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FoldDiacritics(tt.in); got != tt.want {
				t.Errorf("FoldDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
