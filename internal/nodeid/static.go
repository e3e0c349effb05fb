package nodeid

import (
	"context"
	"fmt"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
	"github.com/j4hangir/snowflake-id/pkg/idgen/snowflake"
)

// StaticAllocator 直接使用配置中的固定标识，不做任何跨进程协调
// 部署方需自行保证(datacenterID, instanceID)全局唯一
type StaticAllocator struct {
	datacenterID int64
	instanceID   int64
}

// NewStatic 创建静态分配器
func NewStatic(datacenterID, instanceID int64) (*StaticAllocator, error) {
	if datacenterID < 0 || datacenterID > snowflake.MaxDatacenterID {
		return nil, fmt.Errorf("%w: got %d, expected 0-%d",
			core.ErrInvalidDatacenterID, datacenterID, int64(snowflake.MaxDatacenterID))
	}
	if instanceID < 0 || instanceID > snowflake.MaxInstanceID {
		return nil, fmt.Errorf("%w: got %d, expected 0-%d",
			core.ErrInvalidInstanceID, instanceID, int64(snowflake.MaxInstanceID))
	}
	return &StaticAllocator{datacenterID: datacenterID, instanceID: instanceID}, nil
}

// Allocate 返回配置的固定标识
func (a *StaticAllocator) Allocate(_ context.Context) (int64, int64, error) {
	return a.datacenterID, a.instanceID, nil
}

// Renew 静态分配无租约，始终成功
func (a *StaticAllocator) Renew(_ context.Context) error {
	return nil
}

// Release 静态分配无租约，始终成功
func (a *StaticAllocator) Release(_ context.Context) error {
	return nil
}
