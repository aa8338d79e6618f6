package sanitize

import "testing"

func TestApplyDefaultRules(t *testing.T) {
	s := NewSanitizer(DefaultRules())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "doubled scheme",
			in:   "See https://https://example.com/planks",
			want: "See https://example.com/planks",
		},
		{
			name: "bare www gets scheme",
			in:   "Browse www.example.com/tile for options",
			want: "Browse https://www.example.com/tile for options",
		},
		{
			name: "markdown bare www",
			in:   "[Vinyl Plank](www.example.com/p/123)",
			want: "[Vinyl Plank](https://www.example.com/p/123)",
		},
		{
			name: "doubled slash in path",
			in:   "https://example.com//products//42",
			want: "https://example.com/products/42",
		},
		{
			name: "trailing punctuation stripped",
			in:   "Check https://example.com/p/9. Then decide",
			want: "Check https://example.com/p/9 Then decide",
		},
		{
			name: "clean text untouched",
			in:   "No links here, just advice about underlayment.",
			want: "No links here, just advice about underlayment.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Apply(tt.in); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
