package nodeid

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

func TestStaticAllocator(t *testing.T) {
	t.Run("正常分配", func(t *testing.T) {
		a, err := NewStatic(3, 7)
		require.NoError(t, err)

		dc, inst, err := a.Allocate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), dc)
		assert.Equal(t, int64(7), inst)

		assert.NoError(t, a.Renew(context.Background()))
		assert.NoError(t, a.Release(context.Background()))
	})

	t.Run("数据中心ID越界", func(t *testing.T) {
		_, err := NewStatic(-1, 0)
		assert.ErrorIs(t, err, core.ErrInvalidDatacenterID)

		_, err = NewStatic(32, 0)
		assert.ErrorIs(t, err, core.ErrInvalidDatacenterID)
	})

	t.Run("实例ID越界", func(t *testing.T) {
		_, err := NewStatic(0, -1)
		assert.ErrorIs(t, err, core.ErrInvalidInstanceID)

		_, err = NewStatic(0, 32)
		assert.ErrorIs(t, err, core.ErrInvalidInstanceID)
	})
}

// openTestDB 打开sqlite测试库，环境不支持CGO时跳过
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDatabase("sqlite", filepath.Join(t.TempDir(), "leases.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	return db
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := OpenDatabase("oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestDatabaseAllocator(t *testing.T) {
	ctx := context.Background()

	t.Run("顺序分配不同槽位", func(t *testing.T) {
		db := openTestDB(t)

		a1, err := NewDatabaseAllocator(db, 1, time.Minute)
		require.NoError(t, err)
		dc1, inst1, err := a1.Allocate(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), dc1)
		assert.Equal(t, int64(0), inst1)

		a2, err := NewDatabaseAllocator(db, 1, time.Minute)
		require.NoError(t, err)
		_, inst2, err := a2.Allocate(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), inst2)

		// 重复调用返回已持有槽位
		_, instAgain, err := a1.Allocate(ctx)
		require.NoError(t, err)
		assert.Equal(t, inst1, instAgain)
	})

	t.Run("续约与释放", func(t *testing.T) {
		db := openTestDB(t)

		a, err := NewDatabaseAllocator(db, 2, time.Minute)
		require.NoError(t, err)

		// 分配前续约应报错
		assert.ErrorIs(t, a.Renew(ctx), ErrNotAllocated)

		_, inst, err := a.Allocate(ctx)
		require.NoError(t, err)
		assert.NoError(t, a.Renew(ctx))
		assert.NoError(t, a.Release(ctx))

		// 释放后槽位可被重新分配
		b, err := NewDatabaseAllocator(db, 2, time.Minute)
		require.NoError(t, err)
		_, instB, err := b.Allocate(ctx)
		require.NoError(t, err)
		assert.Equal(t, inst, instB)
	})

	t.Run("接管过期租约", func(t *testing.T) {
		db := openTestDB(t)

		short, err := NewDatabaseAllocator(db, 3, 20*time.Millisecond)
		require.NoError(t, err)
		_, instShort, err := short.Allocate(ctx)
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		thief, err := NewDatabaseAllocator(db, 3, time.Minute)
		require.NoError(t, err)
		_, instThief, err := thief.Allocate(ctx)
		require.NoError(t, err)
		assert.Equal(t, instShort, instThief, "过期槽位应被接管")

		// 原持有者续约失败
		assert.ErrorIs(t, short.Renew(ctx), ErrLeaseLost)
	})

	t.Run("槽位耗尽", func(t *testing.T) {
		db := openTestDB(t)

		for i := 0; i < 32; i++ {
			a, err := NewDatabaseAllocator(db, 4, time.Minute)
			require.NoError(t, err)
			_, _, err = a.Allocate(ctx)
			require.NoError(t, err)
		}

		extra, err := NewDatabaseAllocator(db, 4, time.Minute)
		require.NoError(t, err)
		_, _, err = extra.Allocate(ctx)
		assert.ErrorIs(t, err, ErrNoFreeSlot)
	})

	t.Run("无效参数", func(t *testing.T) {
		db := openTestDB(t)

		_, err := NewDatabaseAllocator(nil, 0, time.Minute)
		assert.Error(t, err)

		_, err = NewDatabaseAllocator(db, 32, time.Minute)
		assert.ErrorIs(t, err, core.ErrInvalidDatacenterID)
	})
}

func TestRedisAllocator_Validation(t *testing.T) {
	_, err := NewRedisAllocator(nil, 0, time.Minute)
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	_, err = NewRedisAllocator(client, 32, time.Minute)
	assert.ErrorIs(t, err, core.ErrInvalidDatacenterID)

	a, err := NewRedisAllocator(client, 0, time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Renew(context.Background()), ErrNotAllocated)
	assert.NoError(t, a.Release(context.Background()))
}

// TestRedisAllocator_Lease 需要真实Redis实例，通过REDIS_ADDR环境变量启用
func TestRedisAllocator_Lease(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis integration test")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()
	require.NoError(t, client.FlushDB(ctx).Err())

	a1, err := NewRedisAllocator(client, 5, time.Minute)
	require.NoError(t, err)
	dc, inst1, err := a1.Allocate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), dc)
	assert.Equal(t, int64(0), inst1)

	a2, err := NewRedisAllocator(client, 5, time.Minute)
	require.NoError(t, err)
	_, inst2, err := a2.Allocate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inst2)

	assert.NoError(t, a1.Renew(ctx))
	assert.NoError(t, a1.Release(ctx))

	// 释放后槽位0可被再次抢占
	a3, err := NewRedisAllocator(client, 5, time.Minute)
	require.NoError(t, err)
	_, inst3, err := a3.Allocate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inst3)
}
