package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyFixture(t *testing.T, name, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func TestImport_ProcessesFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := runForgeflow(t, dir, "init", dir)
	require.NoError(t, err)

	copyFixture(t, "ledger.csv", filepath.Join(dir, "import", "ledger.csv"))
	copyFixture(t, "receipt.txt", filepath.Join(dir, "import", "receipt.txt"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "notes.txt"), []byte("nothing here\n"), 0o644))

	out, err := runForgeflow(t, dir, "import", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Processed 2 file(s), 1 failed")

	for _, name := range []string{"ledger.pdf", "receipt.pdf"} {
		_, err := os.Stat(filepath.Join(dir, "reports", name))
		assert.NoError(t, err, "report %s should exist", name)
	}

	processed, err := os.ReadDir(filepath.Join(dir, "import", "processed"))
	require.NoError(t, err)
	assert.Len(t, processed, 2)

	// The unusable file stays in import/ for the user to fix.
	_, err = os.Stat(filepath.Join(dir, "import", "notes.txt"))
	assert.NoError(t, err)

	logData, err := os.ReadFile(filepath.Join(dir, "logs", "run-log.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(logData)), "\n")
	require.Len(t, lines, 3, "header + 2 runs")
	assert.Equal(t, "timestamp,run_id,source,format,transactions,dropped_lines,insight_source,report", lines[0])
	assert.Contains(t, lines[1], ",ledger.csv,csv,6,0,rules,reports/ledger.pdf")
	assert.Contains(t, lines[2], ",receipt.txt,text,4,3,rules,reports/receipt.pdf")
}

func TestImport_NothingToDo(t *testing.T) {
	dir := t.TempDir()
	_, err := runForgeflow(t, dir, "init", dir)
	require.NoError(t, err)

	out, err := runForgeflow(t, dir, "import", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No files to import")
}

func TestImport_TextFormat(t *testing.T) {
	dir := t.TempDir()
	_, err := runForgeflow(t, dir, "init", dir)
	require.NoError(t, err)
	copyFixture(t, "ledger.csv", filepath.Join(dir, "import", "ledger.csv"))

	out, err := runForgeflow(t, dir, "import", "--repo", dir, "-f", "text")
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "reports", "ledger.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Advanced Cashflow Analysis:")
}

func TestImport_InvalidSchedule(t *testing.T) {
	dir := t.TempDir()
	_, err := runForgeflow(t, dir, "init", dir)
	require.NoError(t, err)

	out, err := runForgeflow(t, dir, "import", "--repo", dir, "--schedule", "not a schedule")
	require.Error(t, err)
	assert.Contains(t, out, "invalid schedule")
}

func TestImport_ReportFailureKeepsEarlierRunLog(t *testing.T) {
	dir := t.TempDir()
	_, err := runForgeflow(t, dir, "init", dir)
	require.NoError(t, err)

	copyFixture(t, "ledger.csv", filepath.Join(dir, "import", "ledger.csv"))
	copyFixture(t, "receipt.txt", filepath.Join(dir, "import", "receipt.txt"))
	// A directory where the second report should go makes its write fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "reports", "receipt.pdf"), 0o755))

	out, err := runForgeflow(t, dir, "import", "--repo", dir)
	require.Error(t, err, out)
	assert.Contains(t, out, "Processed 1 file(s), 1 failed")

	logData, err := os.ReadFile(filepath.Join(dir, "logs", "run-log.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(logData)), "\n")
	require.Len(t, lines, 2, "header + the run that completed")
	assert.Contains(t, lines[1], ",ledger.csv,csv,6,0,rules,reports/ledger.pdf")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "ledger.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "import", "receipt.txt"))
	assert.NoError(t, err, "failed input stays in import/")
}
