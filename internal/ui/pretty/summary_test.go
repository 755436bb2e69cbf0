package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gomdwarehouse/internal/ui/pretty"
	"github.com/yaklabco/gomdwarehouse/pkg/extract"
)

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats extract.Stats
		want  string
	}{
		{
			name:  "clean",
			stats: extract.Stats{FilesProcessed: 1, Items: map[string]int{"links": 1}},
			want:  "OK 1 file, 1 item\n",
		},
		{
			name: "problems",
			stats: extract.Stats{
				FilesProcessed:    3,
				FilesErrored:      1,
				Items:             map[string]int{"links": 4, "headings": 6},
				UnsafeURLs:        2,
				CollectorFailures: 1,
				Truncated:         1,
			},
			want: "3 files, 10 items, 2 unsafe URLs, 1 collector failure, 1 file not extracted, 1 truncated\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	out := styles.FormatSummary(extract.Stats{
		FilesDiscovered: 4,
		FilesProcessed:  4,
		Items:           map[string]int{"links": 7, "headings": 3},
	})
	assert.Contains(t, out, "Files discovered:")
	assert.Contains(t, out, "headings:")
	assert.Contains(t, out, "Extraction passed")
	assert.Less(t, strings.Index(out, "headings:"), strings.Index(out, "links:"), "collectors are listed by name")

	out = styles.FormatSummary(extract.Stats{FilesProcessed: 1, UnsafeURLs: 1})
	assert.Contains(t, out, "Unsafe URLs:")
	assert.Contains(t, out, "Extraction found unsafe URLs")

	out = styles.FormatSummary(extract.Stats{FilesErrored: 1})
	assert.Contains(t, out, "Extraction completed with failures")
}

