package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/equity/internal/commands"
	"github.com/cleared-dev/equity/internal/config"
	"github.com/cleared-dev/equity/internal/store/csvstore"
)

// runEquityStreams runs the CLI in-process and returns stdout and stderr.
func runEquityStreams(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func runEquity(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runEquityStreams(t, args...)
	return out, err
}

func TestInit_CreatesLayout(t *testing.T) {
	dir := t.TempDir()
	_, err := runEquity(t, "init", dir, "--name", "Test Biz", "--no-git")
	require.NoError(t, err)

	for _, f := range []string{csvstore.AccountsFile, csvstore.ProjectsFile, csvstore.TransactionsFile} {
		_, err := os.Stat(filepath.Join(dir, commands.DataDir, f))
		require.NoError(t, err, "%s should exist", f)
	}
	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".env")
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runEquity(t, "init", dir, "--name", "My Company", "--no-git")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, config.DriverCSV, cfg.Store.Driver)
	assert.False(t, cfg.Git.AutoCommit)
	require.NoError(t, cfg.Validate())
}

func TestInit_ChartHasClearingAccount(t *testing.T) {
	dir := t.TempDir()
	_, err := runEquity(t, "init", dir, "--name", "Test Biz", "--no-git")
	require.NoError(t, err)

	st, err := csvstore.Open(filepath.Join(dir, commands.DataDir))
	require.NoError(t, err)
	accts, err := st.ListAccounts(t.Context())
	require.NoError(t, err)

	ids := make([]string, len(accts))
	for i, a := range accts {
		ids[i] = a.ID
	}
	assert.Contains(t, ids, "sys-clearing")
	assert.Contains(t, ids, "bank-operating")
}

func TestInit_GitRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	_, err := runEquity(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init:")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	out, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Equity Engine <equity@cleared.dev>")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runEquity(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestVersion(t *testing.T) {
	out, err := runEquity(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:")
}
