package htmlsanitize_test

import (
	"testing"

	"github.com/accessmaps/accessmap/internal/app/system/htmlsanitize"
)

func TestStrip(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"plain text", "no ramp at the north entrance", "no ramp at the north entrance"},
		{"script removed", "<script>alert('xss')</script>steep curb", "steep curb"},
		{"tags removed, text kept", "<b>broken</b> elevator", "broken elevator"},
		{"img onerror removed", `<img src=x onerror="alert(1)">door`, "door"},
		{"anchor stripped", `<a href="javascript:alert(1)">ramp</a>`, "ramp"},
		{"lone comparison kept", "5 < 10 steps", "5 < 10 steps"},
		{"ampersand kept", "ramp & rail", "ramp & rail"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := htmlsanitize.Strip(tc.in); got != tc.want {
				t.Errorf("Strip(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
