package extract

import (
	"maps"
	"reflect"
	"slices"
)

// FileOutcome is the result of one document in a run.
type FileOutcome struct {
	Path string

	// Result is nil when Error is set.
	Result *DocumentResult

	// Error is set when the document could not be extracted: unreadable,
	// over a limit, or rejected by the tokenizer.
	Error error
}

// Stats aggregates a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int

	// Items counts extracted items per collector, for collectors whose
	// value is a slice.
	Items map[string]int

	// UnsafeURLs counts links and images that failed validation.
	UnsafeURLs int

	// CollectorFailures counts failed collector runs across documents.
	CollectorFailures int

	// Truncated counts collector runs that hit their item cap.
	Truncated int

	// Warnings counts malformed-token warnings across documents.
	Warnings int
}

// Result is the outcome of a run. Files are in path order.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// HasFailures reports whether any document errored or any collector failed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0 || r.Stats.CollectorFailures > 0
}

// HasUnsafeURLs reports whether any link or image failed validation.
func (r *Result) HasUnsafeURLs() bool {
	return r != nil && r.Stats.UnsafeURLs > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	doc := outcome.Result
	r.Stats.FilesProcessed++
	r.Stats.UnsafeURLs += doc.UnsafeURLs()
	r.Stats.Warnings += len(doc.Warnings)

	for name, res := range doc.Results {
		switch {
		case res.Failed():
			r.Stats.CollectorFailures++
			continue
		case res.Truncated:
			r.Stats.Truncated++
		}
		if n, ok := ItemCount(res.Value); ok {
			r.Stats.Items[name] += n
		}
	}
}

// ItemCount returns the length of a collector value when it is a slice.
func ItemCount(value any) (int, bool) {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice {
		return 0, false
	}
	return v.Len(), true
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
