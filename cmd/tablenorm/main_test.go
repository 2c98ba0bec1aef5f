package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-tables/internal/common"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 3, exitCode(common.NewAppError(common.CodeInvalidDocument, "bad", common.ErrValidation)))
	assert.Equal(t, 5, exitCode(common.NewAppError(common.CodeNotFound, "x", common.ErrNotFound)))
	assert.Equal(t, 14, exitCode(common.NewAppError(common.CodeDatabase, "ping", common.ErrDatabase)))
	assert.Equal(t, 13, exitCode(errors.New("boom")))
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "skip.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	single := filepath.Join(t.TempDir(), "one.json")

	got, err := expandPaths([]string{single, dir}, []string{"json"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{single, filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, got)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"pages":[{"page_number":1,"headers":["A"],"rows":[["1"]]}]}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"pages":[{"headers":[]}]}`), 0o644))

	var out bytes.Buffer
	validateCmd.SetOut(&out)
	t.Cleanup(func() { validateCmd.SetOut(nil) })

	err := validateCmd.RunE(validateCmd, []string{good, bad, filepath.Join(dir, "missing.json")})
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))
	assert.Contains(t, out.String(), "ok\t"+good+"\tpages=1")
	assert.Contains(t, out.String(), "invalid\t"+bad)
	assert.Contains(t, out.String(), "invalid\t"+filepath.Join(dir, "missing.json"))
}
