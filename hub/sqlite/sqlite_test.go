package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavi8/autoplay/core"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func entry(seq uint64, text string) core.CommentaryEntry {
	return core.CommentaryEntry{
		Seq:       seq,
		Text:      text,
		Source:    "Grok",
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAppendAndHistory(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "commentary.db"))

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, s.Append(entry(i, "line")))
	}

	all, err := s.History(0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, uint64(1), all[0].Seq)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), all[0].Timestamp)

	tail, err := s.History(2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, uint64(4), tail[0].Seq)
	assert.Equal(t, uint64(5), tail[1].Seq)
}

func TestDuplicateSeqRejected(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "commentary.db"))

	require.NoError(t, s.Append(entry(1, "first")))
	assert.Error(t, s.Append(entry(1, "dup")))

	all, err := s.History(0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "first", all[0].Text)
}

func TestLastSeqSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commentary.db")

	s := openTestStore(t, path)
	require.NoError(t, s.Append(entry(3, "persisted")))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	last, err := reopened.LastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
