package snowflake

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

// Generator Snowflake算法的ID生成器实现
type Generator struct {
	// ========== 核心状态 ==========
	lastTimestamp int64 // 上次生成ID的时间戳（距纪元毫秒偏移）
	sequence      int64 // 当前毫秒内最后使用的序列号（0-4095）

	// ========== 固定参数 ==========
	datacenterID int64 // 数据中心ID（0-31）
	instanceID   int64 // 实例ID（0-31）
	epoch        int64 // 纪元起点（Unix毫秒），构造后不变

	// ========== 性能优化 ==========
	instancePart uint64 // 预计算的ID部分（datacenterID和instanceID），避免重复计算

	// ========== 配置和工具 ==========
	config    *Config          // 生成器配置（持有副本，外部修改不影响生成器）
	nowFunc   func() time.Time // 时钟源
	metrics   *Metrics         // 性能监控指标（可选，nil时不收集）
	validator core.IDValidator // ID验证器
	parser    core.IDParser    // ID解析器

	// ========== 并发控制 ==========
	mu sync.Mutex // 互斥锁，保护生成器状态
}

// 编译期接口断言
var _ core.Generator = (*Generator)(nil)

// New 创建一个新的Snowflake ID生成器
// 说明：使用最简配置创建生成器，纪元为Unix纪元，默认关闭监控
func New(datacenterID, instanceID int64) (*Generator, error) {
	return NewWithConfig(&Config{
		DatacenterID:  datacenterID,
		InstanceID:    instanceID,
		EnableMetrics: false, // 默认关闭监控以保持性能
	})
}

// NewWithConfig 使用配置创建Snowflake ID生成器
// 说明：完整配置方式，支持自定义纪元、起始状态、时钟源和监控开关。
// 校验按固定顺序执行：纪元溢出 > 起始时间戳 > 纪元范围 > 静态字段界限
func NewWithConfig(config *Config) (*Generator, error) {
	if config == nil {
		return nil, core.ErrNilConfig
	}

	// 步骤1：复制配置并填充默认值（不可变性原则，外部后续修改不影响生成器）
	cfg := config.Clone()
	cfg.SetDefaults()

	// 步骤2：采样当前时间（整个构造过程只读一次时钟）
	current := cfg.NowFunc().UnixMilli()

	// 步骤3：纪元溢出检查
	// 说明：43位时间戳空间对该纪元已耗尽时，无法再生成任何ID，
	// 此时直接失败，恢复手段只有换用更晚的纪元重建生成器
	if current-cfg.Epoch >= MaxTimestamp {
		return nil, fmt.Errorf("%w: %d ms elapsed since epoch %d",
			core.ErrTimestampOverflow, current-cfg.Epoch, cfg.Epoch)
	}

	// 步骤4：起始时间戳默认取当前时间（零值视为未设置）
	timestamp := cfg.Timestamp
	if timestamp == 0 {
		timestamp = current
	}

	// 步骤5：时间相关校验（不允许未来的起点和纪元）
	if timestamp < 0 || timestamp > current {
		return nil, fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidTimestamp, timestamp, current)
	}
	if cfg.Epoch < 0 || cfg.Epoch > current {
		return nil, fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidEpoch, cfg.Epoch, current)
	}

	// 步骤6：静态字段校验（数据中心ID、实例ID、起始序列号）
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 步骤7：预先计算datacenterID和instanceID部分（性能优化）
	// 说明：这两部分在生成器生命周期内不变，预先计算避免每次生成ID时重复计算
	instancePart := (uint64(cfg.DatacenterID) << DatacenterIDShift) |
		(uint64(cfg.InstanceID) << InstanceIDShift)

	// 步骤8：初始化监控（如果启用）
	var metrics *Metrics
	if cfg.EnableMetrics {
		metrics = NewMetrics()
	}

	// 步骤9：创建生成器实例
	// 说明：起始序列号视为已在起始毫秒内使用，同一毫秒内下一个ID从Sequence+1开始
	generator := &Generator{
		lastTimestamp: timestamp - cfg.Epoch,
		sequence:      cfg.Sequence,
		datacenterID:  cfg.DatacenterID,
		instanceID:    cfg.InstanceID,
		epoch:         cfg.Epoch,
		instancePart:  instancePart,
		config:        cfg,
		nowFunc:       cfg.NowFunc,
		metrics:       metrics,
		validator:     NewValidator(cfg.Epoch),
		parser:        NewParser(cfg.Epoch),
	}

	log.Println("Snowflake生成器创建成功",
		"datacenter_id", cfg.DatacenterID,
		"instance_id", cfg.InstanceID,
		"epoch", cfg.Epoch,
		"metrics_enabled", cfg.EnableMetrics)

	return generator, nil
}

// FromSnowflake 从已解码的Snowflake值对象恢复生成器
// 说明：五个字段原样转发给NewWithConfig，生成器从该ID的状态继续；
// 注意起始时间戳转发的是相对偏移值，配合非零纪元时恢复点会相应提前
func FromSnowflake(sf Snowflake) (*Generator, error) {
	return NewWithConfig(&Config{
		DatacenterID: sf.Datacenter(),
		InstanceID:   sf.Instance(),
		Sequence:     sf.Seq(),
		Epoch:        sf.Epoch(),
		Timestamp:    sf.Timestamp(),
	})
}

// NextID 生成下一个唯一ID（线程安全）
// 实现core.IDGenerator接口
// 说明：本方法永不阻塞。同一毫秒内序列号耗尽返回ErrSequenceExhausted，
// 时钟回拨返回ErrClockMovedBackwards，两者均可通过core.IsRetryable识别，
// 稍后重试即可恢复；ErrTimestampOverflow则是该生成器的永久性失败
func (g *Generator) NextID() (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.nextIDUnsafe()
}

// NextIDWait 生成下一个唯一ID，瞬时失败时等待重试（线程安全）
// 说明：NextID的阻塞便利封装。序列号耗尽或时钟回拨时休眠后重试，
// 直到生成成功、遇到永久性错误或ctx被取消
func (g *Generator) NextIDWait(ctx context.Context) (uint64, error) {
	for {
		id, err := g.NextID()
		if err == nil {
			return id, nil
		}
		if !core.IsRetryable(err) {
			return 0, err
		}

		// 瞬时失败，休眠后重试
		if g.metrics != nil {
			g.metrics.WaitCount.Add(1)
		}
		start := time.Now()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(sleepDuration):
		}
		if g.metrics != nil {
			g.metrics.TotalWaitTimeNs.Add(uint64(time.Since(start).Nanoseconds()))
		}
	}
}

// NextIDBatch 批量生成ID（线程安全）
// 实现core.BatchGenerator接口
// 说明：支持跨毫秒生成，序列号耗尽时在锁内等待下一毫秒；
// 遇到时钟回拨或纪元溢出时返回已生成的部分和对应错误
func (g *Generator) NextIDBatch(n int) ([]uint64, error) {
	// 参数验证
	if n <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d",
			core.ErrInvalidBatchSize, n)
	}
	if n > maxBatchSize {
		return nil, fmt.Errorf("%w: batch size too large (max %d), got %d",
			core.ErrInvalidBatchSize, maxBatchSize, n)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.nextIDBatchUnsafe(n)
}

// GetDatacenterID 获取数据中心ID
// 实现core.ConfigurableGenerator接口
func (g *Generator) GetDatacenterID() int64 {
	return g.datacenterID
}

// GetInstanceID 获取实例ID
// 实现core.ConfigurableGenerator接口
func (g *Generator) GetInstanceID() int64 {
	return g.instanceID
}

// GetEpoch 获取纪元起点（Unix毫秒）
// 实现core.ConfigurableGenerator接口
func (g *Generator) GetEpoch() int64 {
	return g.epoch
}

// GetMetrics 获取性能监控指标
// 实现core.MonitorableGenerator接口
func (g *Generator) GetMetrics() map[string]uint64 {
	if g.metrics == nil {
		return map[string]uint64{"metrics_enabled": 0}
	}
	return g.metrics.ToMap()
}

// ResetMetrics 重置性能监控指标
// 实现core.MonitorableGenerator接口
func (g *Generator) ResetMetrics() {
	if g.metrics != nil {
		g.metrics.Reset()
	}
}

// GetIDCount 获取已生成的ID总数
// 实现core.MonitorableGenerator接口
func (g *Generator) GetIDCount() uint64 {
	if g.metrics == nil {
		return 0
	}
	return g.metrics.IDCount.Load()
}

// ParseID 解析ID
// 实现core.ParseableGenerator接口
func (g *Generator) ParseID(id uint64) (*core.IDInfo, error) {
	return g.parser.Parse(id)
}

// ValidateID 验证ID
// 实现core.ParseableGenerator接口
func (g *Generator) ValidateID(id uint64) error {
	return g.validator.Validate(id)
}

// nextIDUnsafe 内部使用的不加锁版本的ID生成方法
// 说明：调用者必须已持有锁
func (g *Generator) nextIDUnsafe() (uint64, error) {
	// 步骤1：获取当前时间戳（距纪元毫秒偏移），每次生成只读一次时钟
	current := g.nowFunc().UnixMilli() - g.epoch

	// 步骤2：纪元溢出检查
	// 说明：43位时间戳空间耗尽后该生成器永久失效，只能换纪元重建
	if current >= MaxTimestamp {
		return 0, fmt.Errorf("%w: %d ms elapsed since epoch %d",
			core.ErrTimestampOverflow, current, g.epoch)
	}

	// 步骤3：序列号管理
	if current == g.lastTimestamp {
		// 同一毫秒内，序列号递增；4096个序列号耗尽时拒绝生成，
		// 状态保持不变，下一毫秒重试自然恢复
		if g.sequence == MaxSequence {
			if g.metrics != nil {
				g.metrics.SequenceExhausted.Add(1)
			}
			return 0, fmt.Errorf("%w: millisecond %d used up",
				core.ErrSequenceExhausted, current)
		}
		g.sequence++
	} else if current < g.lastTimestamp {
		// 步骤4：时钟回拨检测
		// 说明：拒绝生成可能与已发出ID冲突或早于已发出ID的新ID，
		// 状态保持不变，时钟追上后自然恢复
		if g.metrics != nil {
			g.metrics.ClockBackward.Add(1)
		}
		return 0, fmt.Errorf("%w: detected backward drift of %d ms",
			core.ErrClockMovedBackwards, g.lastTimestamp-current)
	} else {
		// 步骤5：新的毫秒，序列号重置为0
		g.sequence = 0
	}

	// 步骤6：推进时间戳水位
	g.lastTimestamp = current

	// 步骤7：组装ID
	// ID结构：时间戳(43位) | 数据中心ID(5位) | 实例ID(5位) | 序列号(12位)
	id := (uint64(current) << TimestampShift) | g.instancePart | uint64(g.sequence)

	// 步骤8：更新监控指标
	if g.metrics != nil {
		g.metrics.IDCount.Add(1)
	}

	return id, nil
}

// nextIDBatchUnsafe 内部使用的不加锁版本的批量生成方法
// 说明：调用者必须已持有锁
func (g *Generator) nextIDBatchUnsafe(n int) ([]uint64, error) {
	ids := make([]uint64, 0, n)
	remaining := n

	for remaining > 0 {
		// 步骤1：获取当前时间戳（距纪元毫秒偏移）
		current := g.nowFunc().UnixMilli() - g.epoch

		// 步骤2：纪元溢出检查
		if current >= MaxTimestamp {
			return ids, fmt.Errorf("%w: %d ms elapsed since epoch %d (generated %d/%d ids)",
				core.ErrTimestampOverflow, current, g.epoch, len(ids), n)
		}

		// 步骤3：时钟回拨检测
		// 说明：批量模式同样拒绝在回拨期间生成，返回已生成的部分
		if current < g.lastTimestamp {
			if g.metrics != nil {
				g.metrics.ClockBackward.Add(1)
			}
			return ids, fmt.Errorf("%w: detected backward drift of %d ms (generated %d/%d ids)",
				core.ErrClockMovedBackwards, g.lastTimestamp-current, len(ids), n)
		}

		// 步骤4：确定本毫秒的起始序列号
		startSeq := int64(0)
		if current == g.lastTimestamp {
			startSeq = g.sequence + 1
			if startSeq > MaxSequence {
				// 当前毫秒序列号已耗尽，等待下一毫秒后重新走检查流程
				if g.metrics != nil {
					g.metrics.SequenceExhausted.Add(1)
					g.metrics.WaitCount.Add(1)
				}
				start := time.Now()
				g.waitNextMillis(g.lastTimestamp)
				if g.metrics != nil {
					g.metrics.TotalWaitTimeNs.Add(uint64(time.Since(start).Nanoseconds()))
				}
				continue
			}
		}

		// 步骤5：本轮在当前毫秒内生成的数量
		available := int(MaxSequence - startSeq + 1)
		take := remaining
		if take > available {
			take = available
		}

		// 步骤6：批量组装ID（同一毫秒内只变化序列号部分）
		base := (uint64(current) << TimestampShift) | g.instancePart
		for i := int64(0); i < int64(take); i++ {
			ids = append(ids, base|uint64(startSeq+i))
		}

		// 步骤7：更新生成器状态和剩余数量
		g.lastTimestamp = current
		g.sequence = startSeq + int64(take) - 1
		remaining -= take
	}

	// 更新监控指标
	if g.metrics != nil {
		g.metrics.IDCount.Add(uint64(len(ids)))
	}

	return ids, nil
}

// waitNextMillis 等待直到获取到比lastTimestamp更大的时间戳（距纪元毫秒偏移）
// 说明：当序列号耗尽时，批量生成需要等待下一毫秒
func (g *Generator) waitNextMillis(lastTimestamp int64) int64 {
	current := g.nowFunc().UnixMilli() - g.epoch
	for current <= lastTimestamp {
		time.Sleep(sleepDuration) // 休眠100微秒，避免CPU空转
		current = g.nowFunc().UnixMilli() - g.epoch
	}
	return current
}
