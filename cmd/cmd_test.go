package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		cfgPath = ""
		_ = inventoryCmd.Flags().Set("category", "")
		_ = reportCmd.Flags().Set("format", "table")
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestInventoryCommand(t *testing.T) {
	path := writeConfig(t, "warehouse:\n  max_capacity_kg: 2000\n  initial_fill_kg: 500\n  seed: 3\n")
	out, err := execute(t, "inventory", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warehouse GDL:")
	assert.Contains(t, out, "electronics")
	assert.Contains(t, out, "videogames")
}

func TestInventoryCommandUnknownCategory(t *testing.T) {
	_, err := execute(t, "inventory", "--category", "boats")
	assert.Error(t, err)
}

func TestFleetLsCommand(t *testing.T) {
	out, err := execute(t, "fleet", "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.Contains(t, lines[0], "SLP")
	assert.Contains(t, out, "A-SLP")
	assert.Contains(t, out, "GDL Airport")
}

func TestReportCommandNeedsPersistentLog(t *testing.T) {
	_, err := execute(t, "report")
	assert.Error(t, err)
}

func TestReportCommandEmptySQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "log.db")
	path := writeConfig(t, "delivery_log:\n  backend: sqlite\n  path: "+db+"\n")
	out, err := execute(t, "report", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "DESTINATION")
}

func TestReportCommandFormats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "log.db")
	path := writeConfig(t, "delivery_log:\n  backend: sqlite\n  path: "+db+"\n")

	out, err := execute(t, "report", "--config", path, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))

	out, err = execute(t, "report", "--config", path, "--format", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "timestamp,sim_hour,task_id"))

	_, err = execute(t, "report", "--config", path, "--format", "xml")
	assert.Error(t, err)
}
