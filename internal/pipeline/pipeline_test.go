package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svt/orm/internal/diag"
	"github.com/svt/orm/internal/metrics"
	"github.com/svt/orm/internal/rules"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_CompilesFixtureToEmission(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		RulesGlob:   "../../testdata/namespaces/example/rules.yml",
		GlobalsPath: "../../testdata/globals.yml",
		CachePath:   filepath.Join(dir, "cache.db"),
		Workers:     2,
	}

	result, err := Run(context.Background(), cfg, testLogger(), metrics.New())
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	assert.False(t, result.Report.HasFatal(), "%+v", result.Report.Diagnostics)

	require.Contains(t, result.CacheTier, "example.com")
	domainCfg := result.CacheTier["example.com"]
	require.Len(t, domainCfg.Rules, 3)
	assert.True(t, domainCfg.Rules[len(domainCfg.Rules)-1].IsDefault)

	require.NotNil(t, result.LBTier)
	assert.Len(t, result.LBTier.Backends, 2)
}

func TestRun_CheckOnlySkipsEmission(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		RulesGlob:   "../../testdata/namespaces/example/rules.yml",
		GlobalsPath: "../../testdata/globals.yml",
		CachePath:   filepath.Join(dir, "cache.db"),
		CheckOnly:   true,
		Workers:     2,
	}

	result, err := Run(context.Background(), cfg, testLogger(), metrics.New())
	require.NoError(t, err)
	assert.False(t, result.Report.HasFatal())
	assert.Nil(t, result.CacheTier)
}

func TestRun_EmptyCachePathSkipsCacheEntirely(t *testing.T) {
	cfg := Config{
		RulesGlob:   "../../testdata/namespaces/example/rules.yml",
		GlobalsPath: "../../testdata/globals.yml",
		Workers:     2,
	}

	result, err := Run(context.Background(), cfg, testLogger(), metrics.New())
	require.NoError(t, err)
	assert.False(t, result.Report.HasFatal(), "%+v", result.Report.Diagnostics)
}

func TestCollidePhase_EmptyCachePathReturnsNilStore(t *testing.T) {
	docs := rules.ParseDocuments(bytes.NewReader(mustReadFile(t, "../../testdata/namespaces/example/rules.yml")), "rules.yml", &diag.Report{})
	domainOrder := rules.DomainOrder(docs)
	merged := rules.Merge(docs, domainOrder)

	report := &diag.Report{}
	store, err := collidePhase(context.Background(), Config{Workers: 1}, merged, report, testLogger(), metrics.New())
	require.NoError(t, err)
	assert.Nil(t, store)
}

func mustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestRun_MissingGlobalsIsFatalInputError(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		RulesGlob:   "../../testdata/namespaces/example/rules.yml",
		GlobalsPath: filepath.Join(dir, "missing.yml"),
		CachePath:   filepath.Join(dir, "cache.db"),
		Workers:     2,
	}

	result, err := Run(context.Background(), cfg, testLogger(), metrics.New())
	require.NoError(t, err)
	assert.True(t, result.Report.HasFatal())
}
