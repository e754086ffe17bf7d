package directory

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	st, err := NewStorage(&Config{Path: t.TempDir()})
	require.NoError(t, err)
	return st
}

func TestStorage_put_and_get(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	require.NoError(t, st.PutObject(ctx, "nested/dir/object.json", bytes.NewBufferString("payload")))

	reader, err := st.GetObject(ctx, "nested/dir/object.json")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

func TestStorage_put_overwrites_atomically(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewStorage(&Config{Path: dir})
	require.NoError(t, err)

	require.NoError(t, st.PutObject(ctx, "object.json", bytes.NewBufferString("first")))
	require.NoError(t, st.PutObject(ctx, "object.json", bytes.NewBufferString("second")))

	reader, err := st.GetObject(ctx, "object.json")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	// no temp files left behind
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestStorage_exists_and_delete(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	exists, err := st.Exists(ctx, "object.json")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, st.PutObject(ctx, "object.json", bytes.NewBufferString("payload")))
	exists, err = st.Exists(ctx, "object.json")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, st.Delete(ctx, "object.json"))
	exists, err = st.Exists(ctx, "object.json")
	require.NoError(t, err)
	require.False(t, exists)

	// deleting a missing object is not an error
	require.NoError(t, st.Delete(ctx, "object.json"))
}

func TestStorage_sub_storage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewStorage(&Config{Path: dir})
	require.NoError(t, err)

	sub := st.SubStorage("run-1", true)
	require.NoError(t, sub.PutObject(ctx, "object.json", bytes.NewBufferString("payload")))

	_, err = os.Stat(path.Join(dir, "run-1", "object.json"))
	require.NoError(t, err)
}

func TestNewStorage_empty_path(t *testing.T) {
	_, err := NewStorage(&Config{})
	require.Error(t, err)
	_, err = NewStorage(nil)
	require.Error(t, err)
}
