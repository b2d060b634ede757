package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

const testRedisAddr = "localhost:6379"

// testSlotContract checks the behavior every Slot backend shares.
func testSlotContract(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		data, found, err := slot.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, slot.Put(ctx, "tasks", []byte(`[{"id":"1"}]`)))

		data, found, err := slot.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"1"}]`, string(data))
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, slot.Put(ctx, "tasks", []byte(`[]`)))

		data, found, err := slot.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[]`, string(data))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, slot.Put(ctx, "other", []byte(`x`)))

		data, _, err := slot.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(data))
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, slot.Remove(ctx, "tasks"))
		require.NoError(t, slot.Remove(ctx, "tasks"))

		_, found, err := slot.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.False(t, found)

		_, found, err = slot.Get(ctx, "other")
		require.NoError(t, err)
		assert.True(t, found, "removing one key must not touch another")
	})
}

func TestMemorySlot(t *testing.T) {
	testSlotContract(t, NewMemorySlot())
}

func TestMemorySlot_CopiesData(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	buf := []byte("abc")
	require.NoError(t, slot.Put(ctx, "k", buf))
	buf[0] = 'X'

	data, _, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestFileSlot(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	testSlotContract(t, slot)
}

func TestFileSlot_Layout(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(dir)
	require.NoError(t, err)

	require.NoError(t, slot.Put(context.Background(), "taskManager_tasks", []byte(`[]`)))

	data, err := os.ReadFile(filepath.Join(dir, "taskManager_tasks.json"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"taskManager_tasks.json", ".taskManager_tasks.lock"}, names,
		"no temp files may be left behind")
}

func TestFileSlot_RemoveWithoutDirectory(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, err)
	assert.NoError(t, slot.Remove(context.Background(), "tasks"))
}

func TestFileSlot_InvalidKeys(t *testing.T) {
	slot, err := NewFileSlot(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "a/b", `a\b`} {
		assert.Error(t, slot.Put(ctx, key, []byte("x")), "Put(%q)", key)
		_, _, err := slot.Get(ctx, key)
		assert.Error(t, err, "Get(%q)", key)
	}
}

func TestNewFileSlot_EmptyDir(t *testing.T) {
	_, err := NewFileSlot("  ")
	assert.Error(t, err)
}

func TestSQLiteSlot(t *testing.T) {
	slot, err := NewSQLiteSlot(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })
	testSlotContract(t, slot)
}

func TestSQLiteSlot_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "taskboard.db")
	ctx := context.Background()

	slot, err := NewSQLiteSlot(path)
	require.NoError(t, err)
	require.NoError(t, slot.Put(ctx, "tasks", []byte(`[1]`)))
	require.NoError(t, slot.Close())

	reopened, err := NewSQLiteSlot(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	data, found, err := reopened.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[1]`, string(data))
}

func TestRedisSlot(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	prefix := "taskboard-test:" + t.Name() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})

	testSlotContract(t, newRedisSlotFromClient(client, prefix))
}

func TestNewRedisSlot_Unreachable(t *testing.T) {
	_, err := NewRedisSlot(context.Background(), "127.0.0.1:1", "p:")
	assert.Error(t, err)
}

func TestOpenSlot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     models.StorageConfig
		wantErr bool
	}{
		{"default is file", models.StorageConfig{Dir: dir}, false},
		{"file", models.StorageConfig{Backend: models.BackendFile, Dir: dir}, false},
		{"sqlite", models.StorageConfig{Backend: models.BackendSQLite, SQLitePath: ":memory:"}, false},
		{"memory", models.StorageConfig{Backend: models.BackendMemory}, false},
		{"unknown", models.StorageConfig{Backend: "s3"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := OpenSlot(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, slot.Close())
		})
	}
}
