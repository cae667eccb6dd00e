package cmd_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/gambit/internal/gambit/cmd"
)

func TestRootRegistersRun(t *testing.T) {
	root := cmd.Root()

	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", run.Name())

	assert.NotNil(t, run.Flags().Lookup("model"))
	assert.NotNil(t, run.Flags().Lookup("opponent"))
	assert.NotNil(t, run.Flags().Lookup("notation"))
}

func TestRootVersion(t *testing.T) {
	root := cmd.Root()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "v0.1.0\n", out.String())
}
