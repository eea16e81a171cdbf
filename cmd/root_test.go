package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHelp(t *testing.T) {
	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs([]string{"--help"})

	err := rootCmd.Execute()
	require.NoError(t, err)

	output := b.String()
	assert.Contains(t, output, "funnelforge")
	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "generate")
	assert.Contains(t, output, "init")
	assert.Contains(t, output, "validate")
	assert.Contains(t, output, "report")
	assert.Contains(t, output, "version")
}

func TestInvalidCommand(t *testing.T) {
	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs([]string{"no-such-command"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestGenerateFlags(t *testing.T) {
	flags := map[string]*pflag.Flag{}
	generateCmd.Flags().VisitAll(func(f *pflag.Flag) {
		flags[f.Name] = f
	})

	for _, name := range []string{"config", "output", "seed", "days", "start", "no-progress"} {
		assert.Contains(t, flags, name)
	}
	assert.Equal(t, "c", flags["config"].Shorthand)
	assert.Equal(t, "o", flags["output"].Shorthand)
}

func TestPersistentFlags(t *testing.T) {
	verbose := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	quiet := rootCmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, quiet)
	assert.Equal(t, "q", quiet.Shorthand)
}
