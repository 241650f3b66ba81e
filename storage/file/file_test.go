package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/model"
	"github.com/stretchr/testify/require"
)

var testID = model.Identity{Host: "db1", Query: "SELECT sum(xact_commit) FROM pg_stat_database"}

func TestFileStorage_LoadMissing(t *testing.T) {
	st := NewFileStorage(t.TempDir())

	rec, err := st.Load(context.Background(), testID)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestFileStorage_SurvivesNewInstance(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	observed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, NewFileStorage(dir).Save(ctx, testID, model.DeltaRecord{ObservedAt: observed, Value: 123.5}))

	rec, err := NewFileStorage(dir).Load(ctx, testID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.True(t, rec.ObservedAt.Equal(observed))
	require.Equal(t, 123.5, rec.Value)
}

func TestFileStorage_OverwritesSingleSlot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st := NewFileStorage(dir)
	t0 := time.Unix(1000, 0)

	require.NoError(t, st.Save(ctx, testID, model.DeltaRecord{ObservedAt: t0, Value: 1}))
	require.NoError(t, st.Save(ctx, testID, model.DeltaRecord{ObservedAt: t0.Add(time.Minute), Value: 2}))

	rec, err := st.Load(ctx, testID)
	require.NoError(t, err)
	require.Equal(t, 2.0, rec.Value)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	require.True(t, strings.HasPrefix(entries[0].Name(), filePrefix))
}

func TestFileStorage_CorruptIsFirstRun(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"garbage", "\x80\x03}q\x00"},
		{"partial", `{"observed_at":"2024-03-01T12:0`},
		{"no_time", `{"value":5}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := NewFileStorage(t.TempDir())
			require.NoError(t, os.WriteFile(st.Path(testID), []byte(tc.content), 0600))

			rec, err := st.Load(context.Background(), testID)
			require.NoError(t, err)
			require.Nil(t, rec)
		})
	}
}

func TestFileStorage_UnreadableIsFault(t *testing.T) {
	st := NewFileStorage(t.TempDir())
	require.NoError(t, os.Mkdir(st.Path(testID), 0700))

	_, err := st.Load(context.Background(), testID)
	require.ErrorIs(t, err, errs.ErrPersistence)
}

func TestFileStorage_UnwritableIsFault(t *testing.T) {
	st := NewFileStorage(filepath.Join(t.TempDir(), "missing"))

	err := st.Save(context.Background(), testID, model.DeltaRecord{ObservedAt: time.Now(), Value: 1})
	require.ErrorIs(t, err, errs.ErrPersistence)
}

func TestFileStorage_DefaultDir(t *testing.T) {
	st := NewFileStorage("")
	require.Equal(t, os.TempDir(), filepath.Dir(st.Path(testID)))
}
