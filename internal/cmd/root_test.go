package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHelp(t *testing.T) {
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "doctest")
	assert.Contains(t, output, "@example")
	assert.Contains(t, output, "--dry-run")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"run", "list", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRunFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{NewRootCommand(), NewRunCommand()} {
		for _, name := range []string{"config", "dry-run", "verbose", "timeout", "runtime", "report", "log-level", "markdown"} {
			assert.NotNil(t, cmd.Flags().Lookup(name), "%s: missing --%s", cmd.Name(), name)
		}
		assert.Equal(t, "5000", cmd.Flags().Lookup("timeout").DefValue)
		assert.Equal(t, "v", cmd.Flags().Lookup("verbose").Shorthand)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "doctest version "+Version+"\n", buf.String())
}
