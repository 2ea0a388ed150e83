package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storefront", cmd.Use)
	assert.Contains(t, cmd.Long, "wishlist")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"cart", "add"}, {"cart", "remove"}, {"cart", "set-qty"}, {"cart", "clear"}, {"cart", "list"},
		{"wishlist", "add"}, {"wishlist", "toggle"}, {"wishlist", "remove"}, {"wishlist", "clear"}, {"wishlist", "list"},
		{"banner", "show"}, {"banner", "dismiss"}, {"banner", "reset"}, {"banner", "status"},
		{"test"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "db", "redis", "namespace"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Empty(t, f.DefValue, name)
	}
}

func TestCartAddFlags(t *testing.T) {
	cmd := NewRootCommand()
	addCmd, _, err := cmd.Find([]string{"cart", "add"})
	require.NoError(t, err)

	qty := addCmd.Flags().Lookup("qty")
	require.NotNil(t, qty)
	assert.Equal(t, "1", qty.DefValue)

	plan := addCmd.Flags().Lookup("plan")
	require.NotNil(t, plan)
	assert.Equal(t, "one-time", plan.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	assert.NotNil(t, testCmd.Flags().Lookup("update"))
	assert.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "cart", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
