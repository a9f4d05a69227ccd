package cli

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"market-alerts/internal/models"
)

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"positive percent", FormatPercent(0.4712), "+0.47%"},
		{"negative percent", FormatPercent(-1.5), "-1.50%"},
		{"zero percent", FormatPercent(0), "0.00%"},
		{"price", FormatPrice(1.26), "1.2600"},
		{"above", FormatDirection(models.DirectionAbove), "▲ above"},
		{"below", FormatDirection(models.DirectionBelow), "▼ below"},
		{"short uuid", ShortID("3f2a9c1e-77b4-4d1a-9a63-0c2d5e1f8b90"), "3f2a9c1e"},
		{"short plain", ShortID("abcdefghijkl"), "abcde..."},
		{"truncate", TruncateString("Resistance zone", 10), "Resista..."},
		{"no truncate", TruncateString("Support", 10), "Support"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// Property: TruncateString never exceeds the limit and keeps short strings
// intact.
func TestProperty_TruncateString(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("length bounded by limit", prop.ForAll(
		func(s string, maxLen int) bool {
			out := TruncateString(s, maxLen)
			if len(s) <= maxLen {
				return out == s
			}
			return len(out) == maxLen
		},
		gen.AlphaString(),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

// Property: every rendered table row has its columns aligned regardless of
// cell content.
func TestProperty_TableAlignment(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("second column starts at the same offset", prop.ForAll(
		func(a, b []string) bool {
			var buf bytes.Buffer
			output := &Output{writer: &buf}
			table := NewTable(output, "SYMBOL", "LABEL")

			n := len(a)
			if len(b) < n {
				n = len(b)
			}
			for i := 0; i < n; i++ {
				table.AddRow(a[i]+"X", "Y"+b[i])
			}
			table.Render()

			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			offset := -1
			for i, line := range lines {
				if i == 1 {
					continue // separator
				}
				col := strings.Index(line, "LABEL")
				if i > 1 {
					col = strings.Index(line, "  Y") + 2
				}
				col = utf8.RuneCountInString(line[:col])
				if offset == -1 {
					offset = col
				} else if col != offset {
					t.Logf("misaligned row %d: %q", i, line)
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.AlphaString()),
		gen.SliceOfN(5, gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestStripANSI(t *testing.T) {
	colored := "\x1b[32m+0.47%\x1b[0m"
	if got := stripANSI(colored); got != "+0.47%" {
		t.Errorf("stripANSI = %q", got)
	}
	if got := displayWidth("▲ above"); got != 7 {
		t.Errorf("displayWidth = %d, want 7", got)
	}
}
