package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/salesimport/internal/core"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func memoryEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestImportDryRun(t *testing.T) {
	memoryEnv(t)
	path := filepath.Join(t.TempDir(), "ventas.csv")
	csv := "Producto,Precio,Email,Nombre,Cantidad\n" +
		"Laptop,100,ana@example.com,Ana,2\n" +
		"Mouse,abc,luis@example.com,Luis,1\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	out, err := execute(t, "import", path, "--dry-run")
	require.NoError(t, err)

	var res core.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "ventas.csv", res.FileName)
	assert.Equal(t, 2, res.TotalRows)
	assert.Equal(t, 1, res.ErrorRows)
	assert.Equal(t, 1, res.SalesCreated)
}

func TestImportFailedBatchExitsNonZero(t *testing.T) {
	memoryEnv(t)
	path := filepath.Join(t.TempDir(), "vacio.csv")
	require.NoError(t, os.WriteFile(path, []byte("Foo,Bar\n1,2\n"), 0o644))

	out, err := execute(t, "import", path, "--dry-run")
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.Contains(t, out, `"exito": false`)
}

func TestImportUsageErrors(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "import", "missing.xlsx", "--dry-run")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, "import", "missing.xlsx", "--kind", "invoices")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownImportKind))
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestTemplateToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clientes.csv")

	out, err := execute(t, "template", "clientes", "--format", "csv", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Contains(t, header, "Email")
}

func TestTemplateToStdout(t *testing.T) {
	out, err := execute(t, "template", "--format", "xlsx", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "PK"), "xlsx output should be a zip archive")
}

func TestTemplateUnknownMode(t *testing.T) {
	_, err := execute(t, "template", "facturas")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestResetNeedsConfirmation(t *testing.T) {
	_, err := execute(t, "reset")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestMigratePrint(t *testing.T) {
	out, err := execute(t, "migrate", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS sales")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitUsage, exitCode(withCode(exitUsage, errors.New("bad flag"))))
}
