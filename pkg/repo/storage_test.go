package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
)

func storageBackends(t *testing.T) map[string]func(t *testing.T) Storage {
	t.Helper()
	return map[string]func(t *testing.T) Storage{
		"filesystem": func(t *testing.T) Storage {
			t.Helper()
			s, err := NewFilesystemStorage(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"blob": func(t *testing.T) Storage {
			t.Helper()
			bucket, err := blob.OpenBucket(context.Background(), "mem://")
			require.NoError(t, err)
			s := NewBlobStorageFromBucket(bucket, "snapshots")
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStorage(t *testing.T) {
	for name, newStorage := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("write overwrite read", func(t *testing.T) {
				s := newStorage(t)
				require.NoError(t, s.Write(ctx, "menu.json", []byte(`{"a":{}}`)))
				require.NoError(t, s.Write(ctx, "menu.json", []byte(`{"b":{}}`)))
				data, err := s.Read(ctx, "menu.json")
				require.NoError(t, err)
				assert.JSONEq(t, `{"b":{}}`, string(data))
			})

			t.Run("read missing", func(t *testing.T) {
				s := newStorage(t)
				_, err := s.Read(ctx, "missing.json")
				require.Error(t, err)
				assert.ErrorIs(t, err, os.ErrNotExist)
			})

			t.Run("list by prefix newest first", func(t *testing.T) {
				s := newStorage(t)
				for _, key := range []string{"snap-1", "snap-3", "other", "snap-2"} {
					require.NoError(t, s.Write(ctx, key, []byte(key)))
				}
				keys, err := s.List(ctx, "snap-")
				require.NoError(t, err)
				assert.Equal(t, []string{"snap-3", "snap-2", "snap-1"}, keys)

				keys, err = s.List(ctx, "none-")
				require.NoError(t, err)
				assert.Empty(t, keys)
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				s := newStorage(t)
				require.NoError(t, s.Write(ctx, "gone", []byte("x")))
				require.NoError(t, s.Delete(ctx, "gone"))
				require.NoError(t, s.Delete(ctx, "gone"))
				_, err := s.Read(ctx, "gone")
				assert.ErrorIs(t, err, os.ErrNotExist)
			})

			t.Run("concurrent writes", func(t *testing.T) {
				s := newStorage(t)
				var wg sync.WaitGroup
				for i := 0; i < 10; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						assert.NoError(t, s.Write(ctx, fmt.Sprintf("key-%d", i), []byte("data")))
					}(i)
				}
				wg.Wait()
				keys, err := s.List(ctx, "key-")
				require.NoError(t, err)
				assert.Len(t, keys, 10)
			})
		})
	}
}

func TestFilesystemStorageLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFilesystemStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), CurrentKey, []byte("{}")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CurrentKey, entries[0].Name())

	info, err := os.Stat(filepath.Join(dir, CurrentKey))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestBlobStoragePrefix(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	s := NewBlobStorageFromBucket(bucket, "menus")
	require.NoError(t, s.Write(ctx, "a.json", []byte("a")))

	exists, err := bucket.Exists(ctx, "menus/a.json")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "blob:unknown:menus/", s.Name())
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	s, err := NewStorage(ctx, "", t.TempDir(), "", "")
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStorage{}, s)

	_, err = NewStorage(ctx, StorageTypeBlob, "", "", "")
	require.Error(t, err)

	_, err = NewStorage(ctx, StorageTypeBlob, "", "ftp://bucket", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported blob storage URL scheme")

	_, err = NewStorage(ctx, "tape", "", "", "")
	require.Error(t, err)

	mem, err := NewStorage(ctx, StorageTypeBlob, "", "mem://", "snapshots")
	require.NoError(t, err)
	assert.Equal(t, "blob:memory:snapshots/", mem.Name())
	require.NoError(t, mem.Write(ctx, "a.json", []byte("{}")))
	data, err := mem.Read(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	assert.True(t, IsValidBlobScheme("gs://bucket"))
	assert.True(t, IsValidBlobScheme("mem://"))
	assert.Equal(t, "AWS S3", BlobProvider("s3://bucket"))
}
