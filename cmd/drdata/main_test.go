package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adit301104/DrData/internal"
	"github.com/adit301104/DrData/internal/storage"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "drdata.db"))
	t.Setenv("OUTPUT_DIR", dir)
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("FETCH_MODE", "http")
	t.Setenv("REQUEST_DELAY_MS", "0")
	t.Setenv("GROQ_API_KEY", "")
	return dir
}

func TestRunUnknownCommand(t *testing.T) {
	setupEnv(t)
	assert.True(t, errors.Is(run(context.Background(), nil), errUsage))
	assert.True(t, errors.Is(run(context.Background(), []string{"bogus"}), errUsage))
}

func TestRunBatchRequiresFlags(t *testing.T) {
	setupEnv(t)
	err := run(context.Background(), []string{"batch", "--area=baner"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--specialty")
}

func TestRunBatchReturnsSweepErrors(t *testing.T) {
	dir := setupEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, []string{"batch", "--area=baner", "--specialty=ent"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// run closed the ledger before returning, so it can be reopened here.
	db, err := storage.Open(filepath.Join(dir, "drdata.db"))
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, internal.RunFailed, runs[0].Status)
}

func TestRunRejectsUnknownFetchMode(t *testing.T) {
	setupEnv(t)
	t.Setenv("FETCH_MODE", "ftp")
	assert.Error(t, run(context.Background(), []string{"sweep"}))
}
