package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisKV(t *testing.T, prefix string) (*RedisKV, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisKV(rdb, prefix), mr
}

// backends returns every KV implementation that runs without external services.
func backends(t *testing.T) map[string]KV {
	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "nested", "board.json"))
	require.NoError(t, err)
	redisKV, _ := newRedisKV(t, "test:")
	return map[string]KV{
		"memory": NewMemoryKV(),
		"file":   fileKV,
		"redis":  redisKV,
	}
}

func TestKVContract(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, "k", "v1"))
			require.NoError(t, kv.Set(ctx, "k", "v2"))
			v, ok, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", v)

			require.NoError(t, kv.Delete(ctx, "k"))
			_, ok, err = kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, kv.Delete(ctx, "k"), "deleting a missing key is not an error")
		})
	}
}

func TestKVUpdate(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Update(ctx, "n", func(cur string, ok bool) (string, error) {
				assert.False(t, ok)
				assert.Empty(t, cur)
				return "1", nil
			}))
			require.NoError(t, kv.Update(ctx, "n", func(cur string, ok bool) (string, error) {
				assert.True(t, ok)
				return cur + "2", nil
			}))
			v, _, err := kv.Get(ctx, "n")
			require.NoError(t, err)
			assert.Equal(t, "12", v)

			abort := errors.New("abort")
			err = kv.Update(ctx, "n", func(string, bool) (string, error) { return "x", abort })
			assert.ErrorIs(t, err, abort)
			v, _, err = kv.Get(ctx, "n")
			require.NoError(t, err)
			assert.Equal(t, "12", v, "aborted update writes nothing")
		})
	}
}

// increment appends one mark per call, so lost updates show up as a short string.
func increment(cur string, _ bool) (string, error) { return cur + "x", nil }

func TestFileKVUpdateAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.json")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		kv, err := NewFileKV(path)
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, kv.Update(ctx, "n", increment))
			}
		}()
	}
	wg.Wait()

	kv, err := NewFileKV(path)
	require.NoError(t, err)
	v, _, err := kv.Get(ctx, "n")
	require.NoError(t, err)
	assert.Len(t, v, 80)
}

func TestRedisKVUpdateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	kv, mr := newRedisKV(t, "board:")
	require.NoError(t, kv.Set(ctx, "n", "a"))

	calls := 0
	err := kv.Update(ctx, "n", func(cur string, ok bool) (string, error) {
		calls++
		if calls == 1 {
			// Another client writes between WATCH and EXEC.
			require.NoError(t, mr.Set("board:n", "b"))
		}
		return cur + "!", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	got, err := mr.Get("board:n")
	require.NoError(t, err)
	assert.Equal(t, "b!", got)
}

func TestFileKVSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.json")

	kv1, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, kv1.Set(ctx, KeyTasks, `[]`))
	require.NoError(t, kv1.Set(ctx, KeyCredential, "sk-test"))

	kv2, err := NewFileKV(path)
	require.NoError(t, err)
	v, ok, err := kv2.Get(ctx, KeyCredential)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-test", v)
}

func TestFileKVCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	kv, err := NewFileKV(path)
	require.NoError(t, err)
	_, _, err = kv.Get(context.Background(), KeyTasks)
	assert.Error(t, err)
}

func TestFileKVWriteAfterCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	kv, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, KeyCredential, "sk-new"))

	v, ok, err := kv.Get(ctx, KeyCredential)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-new", v)

	backup, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))
}

func TestFileKVEmptyFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	kv, err := NewFileKV(path)
	require.NoError(t, err)
	_, ok, err := kv.Get(context.Background(), KeyTasks)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKVUsesPrefix(t *testing.T) {
	kv, mr := newRedisKV(t, "board:")
	require.NoError(t, kv.Set(context.Background(), KeyTasks, "[]"))

	assert.True(t, mr.Exists("board:tasks"))
	assert.False(t, mr.Exists("tasks"))
	assert.Zero(t, mr.TTL("board:tasks"), "board keys never expire")
}
