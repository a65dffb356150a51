package cli

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommander(t *testing.T, args ...string) *subcommands.Commander {
	t.Helper()
	top := flag.NewFlagSet("moveplan", flag.ContinueOnError)
	configPath := filepath.Join(t.TempDir(), "missing.yaml")
	commander := subcommands.NewCommander(top, "moveplan")
	Register(commander, &configPath)
	require.NoError(t, top.Parse(args))
	return commander
}

func TestCalc(t *testing.T) {
	assert.Equal(t, subcommands.ExitSuccess, newCommander(t, "calc", "2", "*", "21").Execute(context.Background()))
	assert.Equal(t, subcommands.ExitFailure, newCommander(t, "calc", "2 ** 3").Execute(context.Background()))
	assert.Equal(t, subcommands.ExitUsageError, newCommander(t, "calc").Execute(context.Background()))
}

func TestImportRequiresFile(t *testing.T) {
	assert.Equal(t, subcommands.ExitUsageError, newCommander(t, "import").Execute(context.Background()))
}

func TestExportWithMemoryStorage(t *testing.T) {
	t.Setenv("MOVEPLAN_STORAGE_DRIVER", "memory")
	output := filepath.Join(t.TempDir(), "backup.json")

	status := newCommander(t, "export", "-o", output).Execute(context.Background())

	require.Equal(t, subcommands.ExitSuccess, status)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Contains(t, doc, "events")
}

func TestWriteJSONFile(t *testing.T) {
	t.Run("should write and close the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")

		require.NoError(t, writeJSONFile(path, map[string]string{"version": "1.0"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `{"version":"1.0"}`, string(data))
	})

	t.Run("should fail when the directory does not exist", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.json")

		err := writeJSONFile(path, map[string]string{})

		assert.ErrorContains(t, err, "could not create")
	})

	t.Run("should report an encoding failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")

		err := writeJSONFile(path, map[string]any{"bad": make(chan int)})

		assert.ErrorContains(t, err, "could not write")
	})
}

func TestExportFailsOnUnwritablePath(t *testing.T) {
	t.Setenv("MOVEPLAN_STORAGE_DRIVER", "memory")
	output := filepath.Join(t.TempDir(), "missing", "backup.json")

	status := newCommander(t, "export", "-o", output).Execute(context.Background())

	assert.Equal(t, subcommands.ExitFailure, status)
}
