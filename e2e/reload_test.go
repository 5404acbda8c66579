//go:build e2e && unix

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReloadKeepsPageAndRereadsConfig(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	workspace, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	deck, err := tf.StandardDeck()
	require.NoError(t, err)

	require.NoError(t, tf.StartApp(deck))
	require.True(t, tf.Ready(), "First slide should be shown")

	require.NoError(t, tf.SendKeys(KeyLast))
	require.True(t, tf.SeePlain("page 3 / 3"), "Should jump to the last slide")

	cfgPath := filepath.Join(workspace, ".deckview.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig+"\n[ui]\nsidebar = false\n"), 0644))

	require.NoError(t, tf.Reload())
	require.True(t, tf.WaitForStatusMessage("Reloading..."), "Reload should be acknowledged")
	require.True(t, tf.WaitForStatusMessage("Configuration reloaded from"), "Configuration should be read again")
	require.True(t, tf.SeePlain("page 3 / 3"), "Reload should keep the current page")

	require.NoError(t, tf.Quit())
}
