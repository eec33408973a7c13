package table_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"calmtrace/internal/ui/table"
	"calmtrace/internal/ui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderAlignsColumns(t *testing.T) {
	got := table.New("VERSION", "ACTIVE", "SAMPLES").
		Row("1", "no", "12").
		Row("12", "yes").
		StyleColumn(1, func(string) lipgloss.Style { return theme.Level(1) }).
		Render()

	want := strings.Join([]string{
		"VERSION  ACTIVE  SAMPLES",
		"───────  ──────  ───────",
		"1        no      12",
		"12       yes",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected table:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := table.New("A").Render(); got != "no rows\n" {
		t.Fatalf("unexpected empty render %q", got)
	}
}
