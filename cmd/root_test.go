package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"ask", "test", "watch", "serve", "settings"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "copilot", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestAskCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"context", "topic"} {
		flag := askCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "ask should have --%s flag", flagName)
	}
}

func TestTestCommand_PromptDefault(t *testing.T) {
	flag := testCmd.Flags().Lookup("prompt")
	require.NotNil(t, flag, "test command should have --prompt flag")
	assert.Equal(t, "ping", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestWatchCommand_SourceDefaults(t *testing.T) {
	for _, flagName := range []string{"clipboard", "captions"} {
		flag := watchCmd.Flags().Lookup(flagName)
		require.NotNil(t, flag, "watch should have --%s flag", flagName)
		assert.Equal(t, "true", flag.DefValue)
	}
}

func TestSettingsCommand_HasSubcommands(t *testing.T) {
	cmds := settingsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"list", "get", "set", "export", "import"}
	for _, name := range expected {
		assert.True(t, names[name], "settings should have subcommand %q", name)
	}
}
