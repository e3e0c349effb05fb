package nodeid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
	"github.com/j4hangir/snowflake-id/pkg/idgen/snowflake"
)

// NodeLease 实例槽位租约记录
type NodeLease struct {
	DatacenterID int64     `gorm:"primaryKey;autoIncrement:false"`
	InstanceID   int64     `gorm:"primaryKey;autoIncrement:false"`
	Owner        string    `gorm:"size:128;not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (NodeLease) TableName() string {
	return "node_leases"
}

// errSlotTaken 槽位被有效租约占用，继续扫描下一个
var errSlotTaken = errors.New("slot taken")

// OpenDatabase 按驱动名打开数据库连接
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// DatabaseAllocator 基于数据库租约的实例槽位分配器
// node_leases表以(datacenter_id, instance_id)为主键，
// 抢占 = 插入新记录或接管过期记录，均在事务内完成
type DatabaseAllocator struct {
	db           *gorm.DB
	datacenterID int64
	ttl          time.Duration
	owner        string

	mu         sync.Mutex
	instanceID int64
	allocated  bool
}

// NewDatabaseAllocator 创建数据库租约分配器并迁移租约表
func NewDatabaseAllocator(db *gorm.DB, datacenterID int64, ttl time.Duration) (*DatabaseAllocator, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle cannot be nil")
	}
	if datacenterID < 0 || datacenterID > snowflake.MaxDatacenterID {
		return nil, fmt.Errorf("%w: got %d, expected 0-%d",
			core.ErrInvalidDatacenterID, datacenterID, int64(snowflake.MaxDatacenterID))
	}
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	if err := db.AutoMigrate(&NodeLease{}); err != nil {
		return nil, fmt.Errorf("failed to migrate node_leases table: %w", err)
	}
	return &DatabaseAllocator{
		db:           db,
		datacenterID: datacenterID,
		ttl:          ttl,
		owner:        newOwnerID(),
		instanceID:   -1,
	}, nil
}

// Allocate 扫描并抢占第一个空闲或过期的实例槽位
func (a *DatabaseAllocator) Allocate(ctx context.Context) (int64, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.allocated {
		return a.datacenterID, a.instanceID, nil
	}

	for inst := int64(0); inst <= snowflake.MaxInstanceID; inst++ {
		claimed, err := a.tryClaim(ctx, inst)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to claim instance slot %d: %w", inst, err)
		}
		if claimed {
			a.instanceID = inst
			a.allocated = true
			return a.datacenterID, inst, nil
		}
	}

	return 0, 0, fmt.Errorf("%w: datacenter %d", ErrNoFreeSlot, a.datacenterID)
}

// tryClaim 尝试抢占单个槽位：不存在则插入，已过期或本就属于自己则接管
func (a *DatabaseAllocator) tryClaim(ctx context.Context, instanceID int64) (bool, error) {
	now := time.Now()
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lease NodeLease
		err := tx.Where("datacenter_id = ? AND instance_id = ?", a.datacenterID, instanceID).
			Take(&lease).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			create := tx.Create(&NodeLease{
				DatacenterID: a.datacenterID,
				InstanceID:   instanceID,
				Owner:        a.owner,
				ExpiresAt:    now.Add(a.ttl),
			})
			if create.Error != nil {
				// 并发插入冲突说明有人抢先，换下一个槽位
				if errors.Is(create.Error, gorm.ErrDuplicatedKey) {
					return errSlotTaken
				}
				return create.Error
			}
			return nil
		case err != nil:
			return err
		}

		res := tx.Model(&NodeLease{}).
			Where("datacenter_id = ? AND instance_id = ? AND (owner = ? OR expires_at <= ?)",
				a.datacenterID, instanceID, a.owner, now).
			Updates(map[string]any{"owner": a.owner, "expires_at": now.Add(a.ttl)})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errSlotTaken
		}
		return nil
	})

	if errors.Is(err, errSlotTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Renew 续约已持有的槽位
func (a *DatabaseAllocator) Renew(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.allocated {
		return ErrNotAllocated
	}

	res := a.db.WithContext(ctx).Model(&NodeLease{}).
		Where("datacenter_id = ? AND instance_id = ? AND owner = ?",
			a.datacenterID, a.instanceID, a.owner).
		Update("expires_at", time.Now().Add(a.ttl))
	if res.Error != nil {
		return fmt.Errorf("failed to renew lease: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		a.allocated = false
		return fmt.Errorf("%w: instance slot %d", ErrLeaseLost, a.instanceID)
	}
	return nil
}

// Release 释放已持有的槽位，未分配时为空操作
func (a *DatabaseAllocator) Release(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.allocated {
		return nil
	}

	instanceID := a.instanceID
	a.allocated = false
	a.instanceID = -1

	res := a.db.WithContext(ctx).
		Where("datacenter_id = ? AND instance_id = ? AND owner = ?",
			a.datacenterID, instanceID, a.owner).
		Delete(&NodeLease{})
	if res.Error != nil {
		return fmt.Errorf("failed to release lease: %w", res.Error)
	}
	return nil
}
