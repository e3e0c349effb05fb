package snowflake

import (
	"fmt"
	"time"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

// ============================================================================
// Snowflake 值对象定义
// ============================================================================

// Snowflake 解码后的ID值对象（不可变）
// 说明：五个字段在构造时一次性校验，构造成功后不再变化；
// 所有派生属性（绝对时间、日历时间等）均为纯计算，不存储
type Snowflake struct {
	timestamp  int64 // 距纪元的毫秒偏移（0 - 8796093022207）
	datacenter int64 // 数据中心ID（0-31）
	instance   int64 // 实例ID（0-31）
	epoch      int64 // 纪元起点（Unix毫秒，>= 0）
	seq        int64 // 序列号（0-4095）
}

// NewSnowflake 从五个字段构造Snowflake值对象
// 说明：任一字段越界立即返回错误，不会产生部分构造的对象
// 参数:
//   - timestamp: 距纪元的毫秒偏移
//   - datacenter: 数据中心ID
//   - instance: 实例ID
//   - epoch: 纪元起点（Unix毫秒）
//   - seq: 序列号
func NewSnowflake(timestamp, datacenter, instance, epoch, seq int64) (Snowflake, error) {
	if epoch < 0 {
		return Snowflake{}, fmt.Errorf("%w: got %d", core.ErrInvalidEpoch, epoch)
	}
	if timestamp < 0 || timestamp > MaxTimestamp {
		return Snowflake{}, fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidTimestamp, timestamp, int64(MaxTimestamp))
	}
	if datacenter < 0 || datacenter > MaxDatacenterID {
		return Snowflake{}, fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidDatacenterID, datacenter, MaxDatacenterID)
	}
	if instance < 0 || instance > MaxInstanceID {
		return Snowflake{}, fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidInstanceID, instance, MaxInstanceID)
	}
	if seq < 0 || seq > MaxSequence {
		return Snowflake{}, fmt.Errorf("%w: got %d, valid range [0, %d]",
			core.ErrInvalidSequence, seq, MaxSequence)
	}

	return Snowflake{
		timestamp:  timestamp,
		datacenter: datacenter,
		instance:   instance,
		epoch:      epoch,
		seq:        seq,
	}, nil
}

// Parse 从64位整数解码Snowflake值对象
// 说明：按固定位布局提取四个字段（位运算保证各字段天然在界内），
// 纪元不编码在ID中，必须由调用方提供生成时使用的纪元
func Parse(raw uint64, epoch int64) (Snowflake, error) {
	return NewSnowflake(
		int64(raw>>TimestampShift),
		int64((raw>>DatacenterIDShift)&MaxDatacenterID),
		int64((raw>>InstanceIDShift)&MaxInstanceID),
		epoch,
		int64(raw&MaxSequence),
	)
}

// Value 编码为64位整数
// 说明：Parse的逆运算，Parse(s.Value(), s.Epoch()) == s 恒成立
func (s Snowflake) Value() uint64 {
	return (uint64(s.timestamp) << TimestampShift) |
		(uint64(s.datacenter) << DatacenterIDShift) |
		(uint64(s.instance) << InstanceIDShift) |
		uint64(s.seq)
}

// ========== 字段访问 ==========

// Timestamp 距纪元的毫秒偏移
func (s Snowflake) Timestamp() int64 { return s.timestamp }

// Datacenter 数据中心ID
func (s Snowflake) Datacenter() int64 { return s.datacenter }

// Instance 实例ID
func (s Snowflake) Instance() int64 { return s.instance }

// Epoch 纪元起点（Unix毫秒）
func (s Snowflake) Epoch() int64 { return s.epoch }

// Seq 序列号
func (s Snowflake) Seq() int64 { return s.seq }

// ========== 派生属性 ==========

// Milliseconds 绝对时间戳（Unix毫秒）
func (s Snowflake) Milliseconds() int64 {
	return s.timestamp + s.epoch
}

// Seconds 绝对时间戳（秒，含毫秒小数）
func (s Snowflake) Seconds() float64 {
	return float64(s.Milliseconds()) / 1000
}

// Time 生成时刻的日历时间（UTC）
func (s Snowflake) Time() time.Time {
	return time.UnixMilli(s.Milliseconds()).UTC()
}

// TimeIn 生成时刻在指定时区的日历时间
// 说明：loc为nil时使用本地时区
func (s Snowflake) TimeIn(loc *time.Location) time.Time {
	t := time.UnixMilli(s.Milliseconds())
	if loc == nil {
		return t
	}
	return t.In(loc)
}

// EpochDuration 纪元起点相对Unix纪元的时长
func (s Snowflake) EpochDuration() time.Duration {
	return time.Duration(s.epoch) * time.Millisecond
}

// String 实现Stringer接口
func (s Snowflake) String() string {
	return fmt.Sprintf("snowflake(ts=%d dc=%d inst=%d seq=%d epoch=%d)",
		s.timestamp, s.datacenter, s.instance, s.seq, s.epoch)
}
