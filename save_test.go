package geocell

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/cellunion"
	"github.com/hupe1980/geocell/internal/fs"
)

func TestSaveFaults(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "regions.gcx")

	diskFull := errors.New("disk full")
	ffs := fs.NewFaultyFS(nil)
	var logs bytes.Buffer
	idx, err := New(
		withFileSystem(ffs),
		WithLogger(NewLogger(slog.NewTextHandler(&logs, nil))),
	)
	require.NoError(t, err)
	require.NoError(t, idx.AddCellUnion(7, cellunion.New(cellid.FromFace(2).Child(3))))
	require.NoError(t, idx.Build(ctx))

	require.NoError(t, idx.Save(ctx, path))
	good, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "snapshot saved")

	ffs.AddRule(fs.TempSuffix, fs.Fault{FailAfterBytes: 16, Err: diskFull})
	require.ErrorIs(t, idx.Save(ctx, path), diskFull)
	assert.Contains(t, logs.String(), "snapshot failed")

	// The previous snapshot is untouched and still loads.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, good, data)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	loaded, err := Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	plain := errors.New("plain")
	assert.Equal(t, plain, translateError(plain))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	l.WithLabel(3).WithCount(2).WithPath("x.gcx").Info("hello")
	l.LogQuery(ctx, 4, 2, nil)
	l.LogBuild(ctx, 1, 0, 0, 0, errors.New("boom"))
	l.LogLoad(ctx, "x.gcx", 10, nil)

	out := buf.String()
	assert.Contains(t, out, `"label":3`)
	assert.Contains(t, out, `"path":"x.gcx"`)
	assert.Contains(t, out, "query completed")
	assert.Contains(t, out, "build failed")
	assert.Contains(t, out, "snapshot loaded")
	assert.Equal(t, 4, strings.Count(out, "\n"))

	NoopLogger().LogBuild(ctx, 1, 1, 1, 0, nil)
	assert.NotNil(t, NewTextLogger(slog.LevelWarn))
	assert.NotNil(t, NewJSONLogger(slog.LevelWarn))
	assert.NotNil(t, NewLogger(nil))
}
