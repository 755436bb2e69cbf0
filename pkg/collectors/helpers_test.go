package collectors_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/pkg/collectors"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
	"github.com/yaklabco/gomdwarehouse/pkg/parser/goldmark"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// collect tokenizes src and runs the collectors cfg enables.
func collect(t *testing.T, flavor, src string, cfg *config.Config) map[string]warehouse.Result {
	t.Helper()

	stream, err := goldmark.New(flavor).Parse(context.Background(), "test.md", []byte(src))
	require.NoError(t, err)

	wh, err := warehouse.New(warehouse.Source{
		Tokens:    mdast.RawTokens(stream.Tokens),
		Size:      int64(stream.Size()),
		LineCount: stream.LineCount(),
	}, warehouse.Options{})
	require.NoError(t, err)

	reg, err := collectors.Build(cfg)
	require.NoError(t, err)

	results, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)
	return results
}

// value extracts a collector's typed output.
func value[T any](t *testing.T, results map[string]warehouse.Result, name string) T {
	t.Helper()

	res, ok := results[name]
	require.True(t, ok, "collector %s did not run", name)
	require.NoError(t, res.Err)

	v, ok := res.Value.(T)
	require.True(t, ok, "collector %s returned %T", name, res.Value)
	return v
}

// withCollector returns a config that sets one collector's options.
func withCollector(name string, cc config.CollectorConfig) *config.Config {
	cfg := config.NewConfig()
	cfg.Collectors[name] = cc
	return cfg
}

func ptr[T any](v T) *T {
	return &v
}
