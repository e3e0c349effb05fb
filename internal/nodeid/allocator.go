// Package nodeid 为生成器实例分配(datacenterID, instanceID)标识。
//
// 核心算法假设实例标识由外部协调系统保证唯一，本包即是这一协调层：
// static直接使用配置值，redis和database通过租约抢占空闲槽位。
package nodeid

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	// ErrNoFreeSlot 数据中心下的所有实例槽位均已被租用
	ErrNoFreeSlot = errors.New("no free instance slot: all instance ids under the datacenter are leased")

	// ErrLeaseLost 租约已被其他持有者抢占
	ErrLeaseLost = errors.New("lease lost: instance slot is held by another owner")

	// ErrNotAllocated 尚未分配槽位
	ErrNotAllocated = errors.New("not allocated: call Allocate before Renew or Release")
)

// Allocator 实例标识分配器
type Allocator interface {
	// Allocate 申请一组(datacenterID, instanceID)，重复调用返回已持有的槽位
	Allocate(ctx context.Context) (datacenterID, instanceID int64, err error)

	// Renew 续约已持有的实例槽位，租约丢失时返回ErrLeaseLost
	Renew(ctx context.Context) error

	// Release 释放已持有的实例槽位
	Release(ctx context.Context) error
}

// newOwnerID 生成租约持有者标识，用于区分不同进程的抢占和续约
func newOwnerID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err == nil {
		return fmt.Sprintf("%s-%d-%x", host, os.Getpid(), buf)
	}
	return fmt.Sprintf("%s-%d-%d", host, os.Getpid(), time.Now().UnixNano())
}
