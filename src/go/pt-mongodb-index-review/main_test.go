package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percona/pt-mongodb-index-review/src/go/lib/config"
	"github.com/percona/pt-mongodb-index-review/src/go/lib/versioncheck"
	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ServerAlias: "prod1",
		CapturedAt:  time.Date(2022, 5, 4, 10, 11, 12, 0, time.UTC),
		Databases: []snapshot.DatabaseStats{
			{
				Name: "shop",
				Collections: []snapshot.CollectionStats{
					{
						Name:         "orders",
						StorageStats: map[string]interface{}{"count": float64(10)},
						Indexes: []snapshot.IndexStats{
							snapshot.NewIndexStats("_id_", snapshot.IndexKey{{Field: "_id", Direction: 1}}, 20),
							snapshot.NewIndexStats("customer_1", snapshot.IndexKey{{Field: "customer", Direction: 1}}, 0),
						},
					},
				},
			},
		},
	}
}

func TestParseDefaults(t *testing.T) {
	var opts cliOptions
	parser, err := newParser(&opts, config.NewConfig())
	require.NoError(t, err)

	kongctx, err := parser.Parse([]string{"--uri", "mongodb://localhost:27017", "--server-alias", "prod1"})
	require.NoError(t, err)

	assert.Equal(t, "run", kongctx.Command())
	assert.Equal(t, "mongodb://localhost:27017", opts.URI)
	assert.Equal(t, "prod1", opts.ServerAlias)
	assert.Equal(t, DEFAULT_OUTPUTDIR, opts.OutputDir)
	assert.Equal(t, DEFAULT_LOGLEVEL, opts.LogLevel)
	assert.Equal(t, 5*time.Minute, opts.Timeout)
	assert.False(t, opts.SkipVersionCheck)
}

func TestParseConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pt-mongodb-index-review.conf")
	content := "skip-version-check\noutput-dir=/var/tmp\nlog-level=debug\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	var opts cliOptions
	parser, err := newParser(&opts, config.NewConfig(file))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--log-level", "warn"})
	require.NoError(t, err)

	assert.True(t, opts.SkipVersionCheck)
	assert.Equal(t, "/var/tmp", opts.OutputDir)
	assert.Equal(t, "warn", opts.LogLevel, "command line flags must win over config files")
}

func TestParseEvaluate(t *testing.T) {
	var opts cliOptions
	parser, err := newParser(&opts, config.NewConfig())
	require.NoError(t, err)

	kongctx, err := parser.Parse([]string{"evaluate", "a.json", "b.json"})
	require.NoError(t, err)

	assert.Equal(t, "evaluate <file>", kongctx.Command())
	assert.Equal(t, []string{"a.json", "b.json"}, opts.Evaluate.Files)
}

func TestRunRequiresURIAndAlias(t *testing.T) {
	opts := cliOptions{SkipVersionCheck: true, Timeout: time.Second}
	err := run(opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	opts.URI = "mongodb://127.0.0.1:27017"
	opts.ServerAlias = "bad/alias"
	err = run(opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestRunUnreachableServer(t *testing.T) {
	opts := cliOptions{
		URI:              "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200",
		ServerAlias:      "prod1",
		SkipVersionCheck: true,
		OutputDir:        t.TempDir(),
		Timeout:          5 * time.Second,
	}
	err := run(opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, exitSourceUnavailable, exitCode(err))
}

func TestEvaluateFiles(t *testing.T) {
	dir := t.TempDir()
	path, err := snapshot.WriteFile(dir, testSnapshot())
	require.NoError(t, err)

	out := &bytes.Buffer{}
	require.NoError(t, evaluate([]string{path}, out))

	assert.Contains(t, out.String(), "  database shop\n")
	assert.Contains(t, out.String(), "    collection orders\n")
	assert.Contains(t, out.String(), "        index customer_1 { customer: 1 } | has never been used\n")
	assert.NotContains(t, out.String(), "index _id_")
}

func TestEvaluateSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad-index-review.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"serverAlias": "prod1"}`), 0o644))
	good, err := snapshot.WriteFile(dir, testSnapshot())
	require.NoError(t, err)

	out := &bytes.Buffer{}
	err = evaluate([]string{bad, good}, out)
	require.Error(t, err)
	assert.Equal(t, exitSnapshotMalformed, exitCode(err))
	assert.Contains(t, out.String(), "index customer_1", "files after a malformed one must still be reviewed")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, exitOK},
		{"usage", errors.New("unknown flag"), exitUsage},
		{"version", errors.Wrap(versioncheck.ErrVersionUnsupported, "server 3.0.15"), exitVersionUnsupported},
		{"source", &snapshot.SourceError{Op: "ping", Err: errors.New("connection refused")}, exitSourceUnavailable},
		{"malformed", errors.Wrap(snapshot.ErrSnapshotMalformed, "missing start"), exitSnapshotMalformed},
		{"write", &exitError{code: exitWriteFailed, err: errors.New("disk full")}, exitWriteFailed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, exitCode(test.err))
		})
	}
}
