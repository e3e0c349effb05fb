package snowflake

import (
	"fmt"
	"time"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

// Validator Snowflake ID验证器
type Validator struct {
	epoch int64 // 纪元起点（Unix毫秒），用于还原绝对时间
}

// ValidateID 全局验证函数（使用默认纪元）
func ValidateID(id uint64) error {
	return NewValidator(DefaultEpoch).Validate(id)
}

// NewValidator 创建新的验证器实例
// 说明：验证器是无状态的，可以创建多个实例或共享单个实例
func NewValidator(epoch int64) *Validator {
	return &Validator{epoch: epoch}
}

// Validate 验证Snowflake ID的有效性
// 实现core.IDValidator接口
func (v *Validator) Validate(id uint64) error {
	// 验证1：ID不能为零值
	// 说明：生成器构造时起始序列号即被占用，正常生成路径不会产出全零ID
	if id == 0 {
		return fmt.Errorf("%w: got zero", core.ErrInvalidSnowflakeID)
	}

	// 提取绝对时间戳（通过位运算，加上纪元起点）
	timestamp := int64(id>>TimestampShift) + v.epoch

	// 验证2：时间戳不能太超前
	// 说明：允许一定的时钟误差（maxFutureTimeTolerance = 1分钟）
	// 目的：
	//   - 防止恶意构造未来的ID
	//   - 容忍服务器之间的时钟偏差
	now := time.Now().UnixMilli()
	if timestamp > now+maxFutureTimeTolerance {
		return fmt.Errorf("%w: timestamp %d is too far in the future (current: %d, max tolerance: %d ms)",
			core.ErrInvalidSnowflakeID, timestamp, now, int64(maxFutureTimeTolerance))
	}

	return nil
}

// ValidateBatch 批量验证ID
// 实现core.IDValidator接口
func (v *Validator) ValidateBatch(ids []uint64) error {
	if ids == nil {
		return fmt.Errorf("ids slice cannot be nil")
	}

	// 空切片视为有效（边界情况处理）
	if len(ids) == 0 {
		return nil
	}

	// 逐个验证，遇到第一个错误立即返回
	for i, id := range ids {
		if err := v.Validate(id); err != nil {
			return fmt.Errorf("invalid ID at index %d: %w", i, err)
		}
	}

	return nil
}
