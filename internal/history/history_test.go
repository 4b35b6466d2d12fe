// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/commander/internal/commands"
)

func result(input string, status commands.Status) commands.Result {
	return commands.Result{
		ID:            uuid.New(),
		Status:        status,
		Message:       "command '" + commands.ExtractCommandName(input) + "' executed",
		Command:       commands.ExtractCommandName(input),
		Input:         input,
		ExecutionTime: 3 * time.Millisecond,
		At:            time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestStoreJournalsResults(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	first := result("teleport cube 1 2 3", commands.StatusSuccess)
	store.OnCommandExecuted(first)
	store.OnCommandExecuted(result("nope", commands.StatusError))

	ctx := context.Background()
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, "teleport cube 1 2 3", entries[0].Input)
	assert.Equal(t, "teleport", entries[0].Command)
	assert.Equal(t, commands.StatusSuccess, entries[0].Status)
	assert.Equal(t, 3*time.Millisecond, entries[0].Duration)
	assert.True(t, first.At.Equal(entries[0].At))
	assert.Equal(t, commands.StatusError, entries[1].Status)
}

func TestStoreRecentAndPrune(t *testing.T) {
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(ctx, result(fmt.Sprintf("echo %d", i), commands.StatusSuccess)))
	}

	entries, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "echo 7", entries[0].Input)
	assert.Equal(t, "echo 9", entries[2].Input)

	require.NoError(t, store.Prune(ctx, 4))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	entries, err = store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "echo 6", entries[0].Input)
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := Open(path, nil)
	require.NoError(t, err)
	store.OnCommandExecuted(result("help", commands.StatusSuccess))
	require.NoError(t, store.Close())

	store, err = Open(path, nil)
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreClosed(t *testing.T) {
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Recent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NotPanics(t, func() { store.OnCommandExecuted(result("help", commands.StatusSuccess)) })
}

func TestStoreAsExecutorObserver(t *testing.T) {
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	registry := commands.NewRegistry(nil)
	registry.Register(&commands.Command{
		Name:    "ping",
		Handler: func(*commands.Invocation) (bool, error) { return true, nil },
	})
	exec := commands.NewExecutor(registry)
	exec.AddObserver(store)

	res := exec.Execute("ping")
	exec.Execute("")

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, res.ID, entries[0].ID)
	assert.Equal(t, commands.StatusError, entries[1].Status)
}

// =============================================================================
// RECALL TESTS
// =============================================================================

func TestRecallAdd(t *testing.T) {
	r := NewRecall(3)
	r.Add("help")
	r.Add("help")
	r.Add("  ")
	r.Add("list")
	r.Add("help")
	r.Add("time 2")

	assert.Equal(t, []string{"list", "help", "time 2"}, r.Lines())
}

func TestRecallNavigation(t *testing.T) {
	r := NewRecall(10)
	r.Seed([]string{"one", "two", "three"})

	line, ok := r.Prev("draft")
	require.True(t, ok)
	assert.Equal(t, "three", line)
	line, _ = r.Prev(line)
	assert.Equal(t, "two", line)
	line, _ = r.Prev(line)
	assert.Equal(t, "one", line)
	line, _ = r.Prev(line)
	assert.Equal(t, "one", line, "stops at the oldest")

	line, _ = r.Next()
	assert.Equal(t, "two", line)
	line, _ = r.Next()
	assert.Equal(t, "three", line)
	line, ok = r.Next()
	require.True(t, ok)
	assert.Equal(t, "draft", line, "past the newest restores the draft")
	_, ok = r.Next()
	assert.False(t, ok)
}

func TestRecallEmpty(t *testing.T) {
	r := NewRecall(0)
	line, ok := r.Prev("typed")
	assert.False(t, ok)
	assert.Equal(t, "typed", line)
	_, ok = r.Next()
	assert.False(t, ok)
}

func TestRecallDefaultSize(t *testing.T) {
	r := NewRecall(0)
	for i := 0; i < DefaultRecallSize+10; i++ {
		r.Add(fmt.Sprintf("echo %d", i))
	}
	assert.Equal(t, DefaultRecallSize, r.Len())
	assert.Equal(t, "echo 10", r.Lines()[0])
}

func TestRecallObservesInputs(t *testing.T) {
	r := NewRecall(5)
	r.OnCommandExecuted(commands.Result{Input: "help"})
	r.OnCommandExecuted(commands.Result{Input: ""})
	assert.Equal(t, []string{"help"}, r.Lines())
}
