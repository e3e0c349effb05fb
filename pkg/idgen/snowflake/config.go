package snowflake

import (
	"fmt"
	"time"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

// ============================================================================
// Snowflake 配置定义
// ============================================================================

// Config Snowflake生成器配置
type Config struct {
	// DatacenterID 数据中心ID
	// 范围：0-31（5位二进制）
	// 用途：标识不同的数据中心，避免跨数据中心ID冲突
	DatacenterID int64

	// InstanceID 实例ID
	// 范围：0-31（5位二进制）
	// 用途：标识同一数据中心内的不同实例，避免同数据中心内ID冲突
	InstanceID int64

	// Sequence 起始序列号
	// 范围：0-4095（12位二进制）
	// 说明：起始序列号视为已被占用，同一毫秒内的下一个ID从Sequence+1开始；
	// 用于从已知ID恢复生成状态，常规场景保持0即可
	//
	// 默认值：0
	Sequence int64

	// Epoch 纪元起点（Unix毫秒）
	// 说明：
	//   - 生成器产出的所有时间戳都是相对该起点的偏移
	//   - 设置较近的纪元可以延长43位时间戳的可用年限
	//   - 解码ID时必须使用相同的纪元（纪元不编码在ID内）
	//
	// 范围：0 - 当前时间
	// 默认值：0（Unix纪元）
	Epoch int64

	// Timestamp 起始时间戳（Unix毫秒）
	// 说明：
	//   - 生成器从该时刻对应的状态开始生成
	//   - 不允许晚于当前时间（禁止未来起点）
	//
	// 默认值：0（视为未设置，取当前时间）
	Timestamp int64

	// NowFunc 时钟源
	// 说明：
	//   - 生成器每次生成ID时通过该函数读取一次当前时间
	//   - 仅用于测试替换时钟，生产环境保持默认即可
	//
	// 默认值：time.Now
	NowFunc func() time.Time

	// EnableMetrics 是否启用性能监控
	// 说明：
	//   - true: 收集ID生成统计信息（如：生成数量、序列号耗尽次数等）
	//   - false: 不收集监控数据，性能更优
	//
	// 默认值：false
	// 建议：生产环境根据需要开启，测试环境可关闭以提升性能
	EnableMetrics bool
}

// Validate 验证配置的有效性
// 说明：仅校验静态字段界限；与当前时间相关的校验（纪元溢出、
// 未来起点）在NewWithConfig中按构造顺序执行
func (c *Config) Validate() error {
	// 验证数据中心ID
	if c.DatacenterID < 0 || c.DatacenterID > MaxDatacenterID {
		return fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidDatacenterID, c.DatacenterID, MaxDatacenterID)
	}

	// 验证实例ID
	if c.InstanceID < 0 || c.InstanceID > MaxInstanceID {
		return fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidInstanceID, c.InstanceID, MaxInstanceID)
	}

	// 验证起始序列号
	if c.Sequence < 0 || c.Sequence > MaxSequence {
		return fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidSequence, c.Sequence, MaxSequence)
	}

	// 验证纪元起点（不能为负数）
	if c.Epoch < 0 {
		return fmt.Errorf("%w: got %d", core.ErrInvalidEpoch, c.Epoch)
	}

	return nil
}

// SetDefaults 设置配置的默认值
func (c *Config) SetDefaults() {
	// 时钟源默认使用系统时钟
	if c.NowFunc == nil {
		c.NowFunc = time.Now
	}

	// 注意：Timestamp的零值表示"未设置"，在构造时取当前时间，
	// 与Sequence、Epoch的零值默认一致，因此无需显式设置
}

// Clone 克隆配置对象
func (c *Config) Clone() *Config {
	// 创建新的配置对象，复制所有字段
	return &Config{
		DatacenterID:  c.DatacenterID,
		InstanceID:    c.InstanceID,
		Sequence:      c.Sequence,
		Epoch:         c.Epoch,
		Timestamp:     c.Timestamp,
		NowFunc:       c.NowFunc,
		EnableMetrics: c.EnableMetrics,
	}
}
