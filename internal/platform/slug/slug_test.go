package slug_test

import (
	"testing"

	"calmtrace/internal/platform/slug"
)

func TestCode(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"4-7-8 Breathing":        "4_7_8_BREATHING",
		"  box breathing  ":      "BOX_BREATHING",
		"Progressive·relaxation": "PROGRESSIVE_RELAXATION",
		"already_CODE":           "ALREADY_CODE",
		"!!!":                    "",
		"":                       "",
	}
	for in, want := range tests {
		if got := slug.Code(in); got != want {
			t.Fatalf("Code(%q) = %q, want %q", in, got, want)
		}
	}
}
