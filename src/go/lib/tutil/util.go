// Package tutil has helpers shared by tests.
package tutil

import (
	"os"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateSamplesEnv names the environment variable that makes Golden rewrite the sample files.
const UpdateSamplesEnv = "UPDATE_SAMPLES"

// Pretty formats values for failure messages.
func Pretty(value interface{}) string {
	return pretty.Sprintf("%# v", value)
}

// Golden compares got with the content of filename.
// With UPDATE_SAMPLES set, filename is rewritten with got first.
func Golden(t *testing.T, filename string, got []byte) {
	t.Helper()

	if os.Getenv(UpdateSamplesEnv) != "" {
		require.NoError(t, os.WriteFile(filename, got, 0o644))
	}

	want, err := os.ReadFile(filename)
	require.NoError(t, err, "cannot read sample %s", filename)
	assert.Equal(t, string(want), string(got), "output differs from %s", filename)
}
