package draws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRecord(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		delim rune
		want  []string
	}{
		{"plain", "16-Aug-2025,3,14,9", ',', []string{"16-Aug-2025", "3", "14", "9"}},
		{"quoted delimiter", `16-Aug-2025,"a,b",3`, ',', []string{"16-Aug-2025", "a,b", "3"}},
		{"escaped quote", `"say ""hi""",2`, ',', []string{`say "hi"`, "2"}},
		{"empty fields kept", "a,,b,", ',', []string{"a", "", "b", ""}},
		{"spaces trimmed", ` a , "b",c `, ',', []string{"a", "b", "c"}},
		{"tab delimiter", "16-Aug-2025\t\"x\ty\"\t9", '\t', []string{"16-Aug-2025", "x\ty", "9"}},
		{"tab keeps empty fields", "a\t\tb", '\t', []string{"a", "", "b"}},
		{"blank", "   ", ',', nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitRecord(tc.line, tc.delim))
		})
	}
}

func TestSplitRecord_MalformedQuotingNeverFails(t *testing.T) {
	lines := []string{
		`"unterminated,field,3`,
		`a"b,c`,
		`"a"b",c`,
		`""",`,
	}
	for _, l := range lines {
		require.NotPanics(t, func() {
			got := SplitRecord(l, ',')
			assert.NotEmpty(t, got, "line %q", l)
		})
	}
}

func TestSplitRecord_InvalidDelimiterFallsBack(t *testing.T) {
	// the csv reader refuses '"' as a separator
	got := SplitRecord(`a"b"c`, '"')
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
