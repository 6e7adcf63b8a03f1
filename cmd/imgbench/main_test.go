package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/imgbench/pkg/cli"
)

func TestVersionCommand(t *testing.T) {
	old := cli.Version
	cli.Version = "v1.4.2"
	t.Cleanup(func() { cli.Version = old })

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--env-file", filepath.Join(t.TempDir(), "none.env")})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1.4.2\n", out.String())
}

func TestRunCommandReportsScriptErrors(t *testing.T) {
	script := filepath.Join(t.TempDir(), "bad.imgb")
	require.NoError(t, os.WriteFile(script, []byte("reset\ngray 0 1\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", script, "--env-file", filepath.Join(t.TempDir(), "none.env")})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.imgb:2:")
}

func TestRunCommandRequiresScript(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"run"})
	assert.Error(t, cmd.Execute())
}
