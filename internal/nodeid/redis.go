package nodeid

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
	"github.com/j4hangir/snowflake-id/pkg/idgen/snowflake"
)

// DefaultLeaseTTL 租约默认时长，调用方应以小于它的间隔续约
const DefaultLeaseTTL = 30 * time.Second

// 续约与释放必须校验持有者，防止误操作他人租约
var (
	renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

// RedisAllocator 基于Redis租约的实例槽位分配器
// 在固定数据中心下扫描0..MaxInstanceID槽位，用SET NX PX抢占第一个空闲位
type RedisAllocator struct {
	client       redis.Cmdable
	datacenterID int64
	ttl          time.Duration
	owner        string

	mu         sync.Mutex
	instanceID int64
	allocated  bool
}

// NewRedisAllocator 创建Redis租约分配器
// ttl为租约时长，非正值时使用默认30秒；调用方需以小于ttl的间隔定期Renew
func NewRedisAllocator(client redis.Cmdable, datacenterID int64, ttl time.Duration) (*RedisAllocator, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if datacenterID < 0 || datacenterID > snowflake.MaxDatacenterID {
		return nil, fmt.Errorf("%w: got %d, expected 0-%d",
			core.ErrInvalidDatacenterID, datacenterID, int64(snowflake.MaxDatacenterID))
	}
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &RedisAllocator{
		client:       client,
		datacenterID: datacenterID,
		ttl:          ttl,
		owner:        newOwnerID(),
		instanceID:   -1,
	}, nil
}

// Allocate 抢占第一个空闲实例槽位
func (a *RedisAllocator) Allocate(ctx context.Context) (int64, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.allocated {
		return a.datacenterID, a.instanceID, nil
	}

	for inst := int64(0); inst <= snowflake.MaxInstanceID; inst++ {
		ok, err := a.client.SetNX(ctx, a.slotKey(inst), a.owner, a.ttl).Result()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to claim instance slot %d: %w", inst, err)
		}
		if ok {
			a.instanceID = inst
			a.allocated = true
			return a.datacenterID, inst, nil
		}
	}

	return 0, 0, fmt.Errorf("%w: datacenter %d", ErrNoFreeSlot, a.datacenterID)
}

// Renew 续约已持有的槽位
func (a *RedisAllocator) Renew(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.allocated {
		return ErrNotAllocated
	}

	res, err := renewScript.Run(ctx, a.client,
		[]string{a.slotKey(a.instanceID)}, a.owner, a.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to renew lease: %w", err)
	}
	if res == 0 {
		a.allocated = false
		return fmt.Errorf("%w: instance slot %d", ErrLeaseLost, a.instanceID)
	}
	return nil
}

// Release 释放已持有的槽位，未分配时为空操作
func (a *RedisAllocator) Release(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.allocated {
		return nil
	}

	instanceID := a.instanceID
	a.allocated = false
	a.instanceID = -1

	if _, err := releaseScript.Run(ctx, a.client,
		[]string{a.slotKey(instanceID)}, a.owner).Result(); err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}

func (a *RedisAllocator) slotKey(instanceID int64) string {
	return fmt.Sprintf("snowflake:node:%d:%d", a.datacenterID, instanceID)
}
