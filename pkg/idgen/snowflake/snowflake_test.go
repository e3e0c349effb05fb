package snowflake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

// mockClock 测试用的可控时钟，毫秒精度
type mockClock struct {
	mu sync.Mutex
	ms int64
}

func newMockClock(ms int64) *mockClock {
	return &mockClock{ms: ms}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.UnixMilli(c.ms)
}

func (c *mockClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms = ms
}

func (c *mockClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms += ms
}

// TestNew 测试创建Snowflake生成器
func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		datacenterID int64
		instanceID   int64
		wantErr      bool
	}{
		{"有效参数_最小值", 0, 0, false},
		{"有效参数_最大值", 31, 31, false},
		{"有效参数_中间值", 15, 15, false},
		{"无效InstanceID_负数", 1, -1, true},
		{"无效InstanceID_超出", 1, 32, true},
		{"无效DatacenterID_负数", -1, 1, true},
		{"无效DatacenterID_超出", 32, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(tt.datacenterID, tt.instanceID)
			if tt.wantErr {
				if err == nil {
					t.Error("期望得到错误，但没有返回错误")
				}
			} else {
				if err != nil {
					t.Errorf("不期望错误，但得到: %v", err)
					return
				}
				if gen == nil {
					t.Error("生成器不应为nil")
				}
			}
		})
	}
}

// TestNewWithConfig 测试使用配置创建
func TestNewWithConfig(t *testing.T) {
	t.Run("有效配置", func(t *testing.T) {
		config := &Config{
			DatacenterID:  1,
			InstanceID:    1,
			EnableMetrics: true,
		}

		gen, err := NewWithConfig(config)
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		if gen == nil {
			t.Fatal("生成器不应为nil")
		}
		if gen.GetDatacenterID() != 1 {
			t.Errorf("DatacenterID = %d, 期望 1", gen.GetDatacenterID())
		}
		if gen.GetInstanceID() != 1 {
			t.Errorf("InstanceID = %d, 期望 1", gen.GetInstanceID())
		}
		if gen.GetEpoch() != 0 {
			t.Errorf("Epoch = %d, 期望 0", gen.GetEpoch())
		}
	})

	t.Run("nil配置", func(t *testing.T) {
		_, err := NewWithConfig(nil)
		if !errors.Is(err, core.ErrNilConfig) {
			t.Errorf("期望 ErrNilConfig, 得到: %v", err)
		}
	})

	t.Run("自定义纪元", func(t *testing.T) {
		epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
		gen, err := NewWithConfig(&Config{
			DatacenterID: 2,
			InstanceID:   3,
			Epoch:        epoch,
		})
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		if gen.GetEpoch() != epoch {
			t.Errorf("Epoch = %d, 期望 %d", gen.GetEpoch(), epoch)
		}
	})

	t.Run("纪元溢出", func(t *testing.T) {
		// 时钟停在纪元之后2^43-1毫秒处，43位时间戳空间已耗尽
		clock := newMockClock(int64(MaxTimestamp))
		_, err := NewWithConfig(&Config{
			DatacenterID: 1,
			InstanceID:   1,
			Epoch:        0,
			NowFunc:      clock.Now,
		})
		if !errors.Is(err, core.ErrTimestampOverflow) {
			t.Errorf("期望 ErrTimestampOverflow, 得到: %v", err)
		}
	})

	t.Run("未来的起始时间戳", func(t *testing.T) {
		clock := newMockClock(1_000_000)
		_, err := NewWithConfig(&Config{
			DatacenterID: 1,
			InstanceID:   1,
			Timestamp:    2_000_000, // 晚于当前时间
			NowFunc:      clock.Now,
		})
		if !errors.Is(err, core.ErrInvalidTimestamp) {
			t.Errorf("期望 ErrInvalidTimestamp, 得到: %v", err)
		}
	})

	t.Run("负纪元", func(t *testing.T) {
		_, err := NewWithConfig(&Config{
			DatacenterID: 1,
			InstanceID:   1,
			Epoch:        -1,
		})
		if !errors.Is(err, core.ErrInvalidEpoch) {
			t.Errorf("期望 ErrInvalidEpoch, 得到: %v", err)
		}
	})

	t.Run("纪元晚于当前时间", func(t *testing.T) {
		clock := newMockClock(1_000_000)
		_, err := NewWithConfig(&Config{
			DatacenterID: 1,
			InstanceID:   1,
			Epoch:        2_000_000,
			NowFunc:      clock.Now,
		})
		if !errors.Is(err, core.ErrInvalidEpoch) {
			t.Errorf("期望 ErrInvalidEpoch, 得到: %v", err)
		}
	})

	t.Run("起始序列号越界", func(t *testing.T) {
		_, err := NewWithConfig(&Config{
			DatacenterID: 1,
			InstanceID:   1,
			Sequence:     4096,
		})
		if !errors.Is(err, core.ErrInvalidSequence) {
			t.Errorf("期望 ErrInvalidSequence, 得到: %v", err)
		}
	})
}

// TestFromSnowflake 测试从值对象恢复生成器
func TestFromSnowflake(t *testing.T) {
	t.Run("从刚生成的ID恢复", func(t *testing.T) {
		gen, err := New(3, 4)
		if err != nil {
			t.Fatal(err)
		}
		id, err := gen.NextID()
		if err != nil {
			t.Fatal(err)
		}

		sf, err := Parse(id, 0)
		if err != nil {
			t.Fatalf("解码失败: %v", err)
		}

		resumed, err := FromSnowflake(sf)
		if err != nil {
			t.Fatalf("恢复失败: %v", err)
		}
		if resumed.GetDatacenterID() != 3 || resumed.GetInstanceID() != 4 {
			t.Errorf("实例标识 = (%d, %d), 期望 (3, 4)",
				resumed.GetDatacenterID(), resumed.GetInstanceID())
		}

		// 恢复后生成的ID必须晚于原ID（同毫秒内序列号+1，否则时间戳更大）
		next, err := resumed.NextID()
		if err != nil {
			t.Fatal(err)
		}
		if next <= id {
			t.Errorf("恢复后生成的ID %d 不大于原ID %d", next, id)
		}
	})

	t.Run("未来时间戳拒绝恢复", func(t *testing.T) {
		sf, err := NewSnowflake(MaxTimestamp, 1, 2, 0, 3)
		if err != nil {
			t.Fatal(err)
		}
		_, err = FromSnowflake(sf)
		if !errors.Is(err, core.ErrInvalidTimestamp) {
			t.Errorf("期望 ErrInvalidTimestamp, 得到: %v", err)
		}
	})
}

// TestNextID 测试ID生成
func TestNextID(t *testing.T) {
	gen, err := New(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	// 生成多个ID，验证唯一性和单调递增
	ctx := context.Background()
	ids := make(map[uint64]bool)
	count := 10000
	var last uint64

	for i := 0; i < count; i++ {
		id, err := gen.NextIDWait(ctx)
		if err != nil {
			t.Fatalf("生成ID失败: %v", err)
		}
		if id == 0 {
			t.Error("ID不应为零")
		}
		if id <= last {
			t.Errorf("ID未单调递增: 上一个 %d, 当前 %d", last, id)
		}
		if ids[id] {
			t.Errorf("发现重复ID: %d", id)
		}
		ids[id] = true
		last = id
	}

	if len(ids) != count {
		t.Errorf("生成了 %d 个唯一ID，期望 %d 个", len(ids), count)
	}
}

// TestNextID_SameMillisecond 测试同一毫秒内序列号严格递增
func TestNextID_SameMillisecond(t *testing.T) {
	const base = 1_700_000_000_000
	clock := newMockClock(base)

	gen, err := NewWithConfig(&Config{
		DatacenterID: 1,
		InstanceID:   2,
		NowFunc:      clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	// 构造时起始序列号0已被占用，同一毫秒内从1开始
	for want := int64(1); want <= 100; want++ {
		id, err := gen.NextID()
		if err != nil {
			t.Fatalf("第 %d 次生成失败: %v", want, err)
		}
		if got := int64(id & MaxSequence); got != want {
			t.Errorf("序列号 = %d, 期望 %d", got, want)
		}
		if got := int64(id >> TimestampShift); got != base {
			t.Errorf("时间戳 = %d, 期望 %d", got, base)
		}
	}
}

// TestNextID_SequenceExhausted 测试同一毫秒内4096个序列号耗尽
func TestNextID_SequenceExhausted(t *testing.T) {
	const base = 1_700_000_000_000
	clock := newMockClock(base)

	gen, err := NewWithConfig(&Config{
		DatacenterID:  1,
		InstanceID:    1,
		EnableMetrics: true,
		NowFunc:       clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	// 推进到新毫秒，让序列号从0开始完整使用
	clock.Advance(1)

	// 第1到4096次调用消耗序列号0-4095
	for i := 0; i < 4096; i++ {
		id, err := gen.NextID()
		if err != nil {
			t.Fatalf("第 %d 次生成失败: %v", i+1, err)
		}
		if got := int64(id & MaxSequence); got != int64(i) {
			t.Fatalf("序列号 = %d, 期望 %d", got, i)
		}
	}

	// 第4097次调用必须拒绝生成
	_, err = gen.NextID()
	if !errors.Is(err, core.ErrSequenceExhausted) {
		t.Fatalf("期望 ErrSequenceExhausted, 得到: %v", err)
	}
	if !core.IsRetryable(err) {
		t.Error("序列号耗尽应为可重试错误")
	}

	// 下一毫秒自然恢复，序列号归零
	clock.Advance(1)
	id, err := gen.NextID()
	if err != nil {
		t.Fatalf("新毫秒生成失败: %v", err)
	}
	if got := int64(id & MaxSequence); got != 0 {
		t.Errorf("新毫秒序列号 = %d, 期望 0", got)
	}

	metrics := gen.GetMetrics()
	if metrics["sequence_exhausted"] != 1 {
		t.Errorf("sequence_exhausted = %d, 期望 1", metrics["sequence_exhausted"])
	}
}

// TestNextID_MillisecondRollover 测试毫秒推进时序列号归零
func TestNextID_MillisecondRollover(t *testing.T) {
	const base = 1_700_000_000_000
	clock := newMockClock(base)

	gen, err := NewWithConfig(&Config{
		DatacenterID: 5,
		InstanceID:   6,
		NowFunc:      clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	// 同一毫秒内生成几个，序列号递增
	for i := 0; i < 3; i++ {
		if _, err := gen.NextID(); err != nil {
			t.Fatal(err)
		}
	}

	// 推进时钟，新毫秒的第一个ID序列号必须归零
	clock.Advance(7)
	id, err := gen.NextID()
	if err != nil {
		t.Fatal(err)
	}
	if got := int64(id & MaxSequence); got != 0 {
		t.Errorf("序列号 = %d, 期望 0", got)
	}
	if got := int64(id >> TimestampShift); got != base+7 {
		t.Errorf("时间戳 = %d, 期望 %d", got, base+7)
	}
}

// TestNextID_ClockBackward 测试时钟回拨时拒绝生成且状态不变
func TestNextID_ClockBackward(t *testing.T) {
	const base = 1_700_000_000_000
	clock := newMockClock(base)

	gen, err := NewWithConfig(&Config{
		DatacenterID:  1,
		InstanceID:    1,
		EnableMetrics: true,
		NowFunc:       clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	// 正常生成一个（序列号1）
	id1, err := gen.NextID()
	if err != nil {
		t.Fatal(err)
	}

	// 时钟回拨5毫秒，必须拒绝生成
	clock.Set(base - 5)
	_, err = gen.NextID()
	if !errors.Is(err, core.ErrClockMovedBackwards) {
		t.Fatalf("期望 ErrClockMovedBackwards, 得到: %v", err)
	}
	if !core.IsRetryable(err) {
		t.Error("时钟回拨应为可重试错误")
	}

	// 时钟追回原毫秒：状态未被污染，序列号从上次继续
	clock.Set(base)
	id2, err := gen.NextID()
	if err != nil {
		t.Fatalf("时钟恢复后生成失败: %v", err)
	}
	if id2 != id1+1 {
		t.Errorf("恢复后ID = %d, 期望 %d（序列号紧接回拨前）", id2, id1+1)
	}

	// 时钟继续前进，序列号归零
	clock.Set(base + 1)
	id3, err := gen.NextID()
	if err != nil {
		t.Fatal(err)
	}
	if got := int64(id3 & MaxSequence); got != 0 {
		t.Errorf("序列号 = %d, 期望 0", got)
	}

	metrics := gen.GetMetrics()
	if metrics["clock_backward"] != 1 {
		t.Errorf("clock_backward = %d, 期望 1", metrics["clock_backward"])
	}
}

// TestNextID_EpochOverflow 测试纪元耗尽后的永久性失败
func TestNextID_EpochOverflow(t *testing.T) {
	const epoch = 1_600_000_000_000
	clock := newMockClock(epoch + 1000)

	gen, err := NewWithConfig(&Config{
		DatacenterID: 1,
		InstanceID:   1,
		Epoch:        epoch,
		NowFunc:      clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := gen.NextID(); err != nil {
		t.Fatal(err)
	}

	// 时钟跳到距纪元2^43-1毫秒处，43位空间耗尽
	clock.Set(epoch + int64(MaxTimestamp))
	_, err = gen.NextID()
	if !errors.Is(err, core.ErrTimestampOverflow) {
		t.Fatalf("期望 ErrTimestampOverflow, 得到: %v", err)
	}
	if core.IsRetryable(err) {
		t.Error("纪元溢出不应为可重试错误")
	}

	// 溢出是永久性的，重复调用仍然失败
	_, err = gen.NextID()
	if !errors.Is(err, core.ErrTimestampOverflow) {
		t.Fatalf("期望 ErrTimestampOverflow, 得到: %v", err)
	}
}

// TestNextID_SeedSequence 测试起始序列号视为已占用
func TestNextID_SeedSequence(t *testing.T) {
	const base = 1_700_000_000_000
	clock := newMockClock(base)

	gen, err := NewWithConfig(&Config{
		DatacenterID: 1,
		InstanceID:   1,
		Sequence:     100,
		NowFunc:      clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	id, err := gen.NextID()
	if err != nil {
		t.Fatal(err)
	}
	if got := int64(id & MaxSequence); got != 101 {
		t.Errorf("序列号 = %d, 期望 101", got)
	}
}

// TestNextIDWait 测试阻塞封装
func TestNextIDWait(t *testing.T) {
	t.Run("瞬时失败后等待恢复", func(t *testing.T) {
		const base = 1_700_000_000_000
		clock := newMockClock(base)

		gen, err := NewWithConfig(&Config{
			DatacenterID: 1,
			InstanceID:   1,
			Sequence:     MaxSequence, // 当前毫秒已耗尽
			NowFunc:      clock.Now,
		})
		if err != nil {
			t.Fatal(err)
		}

		// 后台稍后推进时钟
		go func() {
			time.Sleep(5 * time.Millisecond)
			clock.Advance(1)
		}()

		id, err := gen.NextIDWait(context.Background())
		if err != nil {
			t.Fatalf("等待生成失败: %v", err)
		}
		if got := int64(id >> TimestampShift); got != base+1 {
			t.Errorf("时间戳 = %d, 期望 %d", got, base+1)
		}
	})

	t.Run("上下文取消", func(t *testing.T) {
		const base = 1_700_000_000_000
		clock := newMockClock(base)

		gen, err := NewWithConfig(&Config{
			DatacenterID: 1,
			InstanceID:   1,
			Sequence:     MaxSequence,
			NowFunc:      clock.Now,
		})
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err = gen.NextIDWait(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("期望 context.DeadlineExceeded, 得到: %v", err)
		}
	})

	t.Run("永久性错误直接返回", func(t *testing.T) {
		const epoch = 1_600_000_000_000
		clock := newMockClock(epoch + 1000)

		gen, err := NewWithConfig(&Config{
			DatacenterID: 1,
			InstanceID:   1,
			Epoch:        epoch,
			NowFunc:      clock.Now,
		})
		if err != nil {
			t.Fatal(err)
		}

		clock.Set(epoch + int64(MaxTimestamp))
		_, err = gen.NextIDWait(context.Background())
		if !errors.Is(err, core.ErrTimestampOverflow) {
			t.Errorf("期望 ErrTimestampOverflow, 得到: %v", err)
		}
	})
}

// TestNextIDBatch 测试批量生成ID
func TestNextIDBatch(t *testing.T) {
	gen, err := New(2, 2)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"批量生成10个", 10, false},
		{"批量生成100个", 100, false},
		{"批量生成1000个", 1000, false},
		{"批量生成跨毫秒", 10000, false},
		{"无效数量_负数", -1, true},
		{"无效数量_零", 0, true},
		{"无效数量_超过最大值", 150000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := gen.NextIDBatch(tt.n)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidBatchSize) {
					t.Errorf("期望 ErrInvalidBatchSize, 得到: %v", err)
				}
			} else {
				if err != nil {
					t.Errorf("不期望错误，但得到: %v", err)
					return
				}
				if len(ids) != tt.n {
					t.Errorf("生成了 %d 个ID，期望 %d 个", len(ids), tt.n)
				}

				// 检查唯一性和单调性
				idMap := make(map[uint64]bool, len(ids))
				var last uint64
				for _, id := range ids {
					if idMap[id] {
						t.Errorf("发现重复ID: %d", id)
					}
					if id <= last {
						t.Errorf("批量ID未单调递增: 上一个 %d, 当前 %d", last, id)
					}
					idMap[id] = true
					last = id
				}
			}
		})
	}
}

// TestNextIDBatch_ClockBackward 测试批量生成遇到时钟回拨返回部分结果
func TestNextIDBatch_ClockBackward(t *testing.T) {
	const base = 1_700_000_000_000
	clock := newMockClock(base)

	gen, err := NewWithConfig(&Config{
		DatacenterID: 1,
		InstanceID:   1,
		NowFunc:      clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	// 时钟回拨后批量生成直接失败，一个都不生成
	clock.Set(base - 10)
	ids, err := gen.NextIDBatch(10)
	if !errors.Is(err, core.ErrClockMovedBackwards) {
		t.Fatalf("期望 ErrClockMovedBackwards, 得到: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("回拨期间生成了 %d 个ID，期望 0 个", len(ids))
	}
}

// TestGetInstanceID 测试获取InstanceID
func TestGetInstanceID(t *testing.T) {
	gen, err := New(3, 5)
	if err != nil {
		t.Fatal(err)
	}

	if gen.GetInstanceID() != 5 {
		t.Errorf("GetInstanceID() = %d, 期望 5", gen.GetInstanceID())
	}
}

// TestGetDatacenterID 测试获取DatacenterID
func TestGetDatacenterID(t *testing.T) {
	gen, err := New(7, 3)
	if err != nil {
		t.Fatal(err)
	}

	if gen.GetDatacenterID() != 7 {
		t.Errorf("GetDatacenterID() = %d, 期望 7", gen.GetDatacenterID())
	}
}

// TestGetMetrics 测试获取监控指标
func TestGetMetrics(t *testing.T) {
	config := &Config{
		DatacenterID:  1,
		InstanceID:    1,
		EnableMetrics: true,
	}

	gen, err := NewWithConfig(config)
	if err != nil {
		t.Fatal(err)
	}

	// 生成一些ID
	ctx := context.Background()
	count := 100
	for i := 0; i < count; i++ {
		_, err := gen.NextIDWait(ctx)
		if err != nil {
			t.Fatal(err)
		}
	}

	metrics := gen.GetMetrics()
	if metrics["id_count"] != uint64(count) {
		t.Errorf("id_count = %d, 期望 %d", metrics["id_count"], count)
	}

	// 未启用监控时返回占位信息
	plain, err := New(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := plain.GetMetrics(); got["metrics_enabled"] != 0 {
		t.Errorf("metrics_enabled = %d, 期望 0", got["metrics_enabled"])
	}
}

// TestResetMetrics 测试重置监控指标
func TestResetMetrics(t *testing.T) {
	config := &Config{
		DatacenterID:  1,
		InstanceID:    1,
		EnableMetrics: true,
	}

	gen, err := NewWithConfig(config)
	if err != nil {
		t.Fatal(err)
	}

	// 生成一些ID
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		_, _ = gen.NextIDWait(ctx)
	}

	gen.ResetMetrics()

	if gen.GetIDCount() != 0 {
		t.Errorf("重置后 IDCount = %d, 期望 0", gen.GetIDCount())
	}
}

// TestGeneratorParseID 测试解析ID
func TestGeneratorParseID(t *testing.T) {
	gen, err := New(5, 10)
	if err != nil {
		t.Fatal(err)
	}

	id, err := gen.NextID()
	if err != nil {
		t.Fatal(err)
	}

	info, err := gen.ParseID(id)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	if info.DatacenterID != 5 {
		t.Errorf("DatacenterID = %d, 期望 5", info.DatacenterID)
	}
	if info.InstanceID != 10 {
		t.Errorf("InstanceID = %d, 期望 10", info.InstanceID)
	}
}

// TestGeneratorValidateID 测试验证ID
func TestGeneratorValidateID(t *testing.T) {
	gen, err := New(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	validID, err := gen.NextID()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      uint64
		wantErr bool
	}{
		{"有效ID", validID, false},
		{"无效ID_零", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gen.ValidateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConcurrency 测试并发安全性
func TestConcurrency(t *testing.T) {
	gen, err := New(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	goroutines := 100
	idsPerGoroutine := 100
	results := make(chan uint64, goroutines*idsPerGoroutine)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				id, err := gen.NextIDWait(ctx)
				if err != nil {
					t.Errorf("生成ID失败: %v", err)
					return
				}
				results <- id
			}
		}()
	}

	wg.Wait()
	close(results)

	// 检查唯一性
	ids := make(map[uint64]bool)
	for id := range results {
		if ids[id] {
			t.Errorf("发现重复ID: %d", id)
		}
		ids[id] = true
	}

	expectedCount := goroutines * idsPerGoroutine
	if len(ids) != expectedCount {
		t.Errorf("生成了 %d 个唯一ID，期望 %d 个", len(ids), expectedCount)
	}
}

// TestConfig 测试配置
func TestConfig(t *testing.T) {
	t.Run("Validate_有效配置", func(t *testing.T) {
		config := &Config{
			DatacenterID: 1,
			InstanceID:   1,
		}
		if err := config.Validate(); err != nil {
			t.Errorf("验证失败: %v", err)
		}
	})

	t.Run("Validate_无效配置", func(t *testing.T) {
		tests := []struct {
			name   string
			config *Config
			want   error
		}{
			{"数据中心ID越界", &Config{DatacenterID: 100, InstanceID: 1}, core.ErrInvalidDatacenterID},
			{"实例ID越界", &Config{DatacenterID: 1, InstanceID: 100}, core.ErrInvalidInstanceID},
			{"序列号越界", &Config{DatacenterID: 1, InstanceID: 1, Sequence: 9999}, core.ErrInvalidSequence},
			{"负纪元", &Config{DatacenterID: 1, InstanceID: 1, Epoch: -5}, core.ErrInvalidEpoch},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.config.Validate(); !errors.Is(err, tt.want) {
					t.Errorf("Validate() = %v, 期望 %v", err, tt.want)
				}
			})
		}
	})

	t.Run("SetDefaults", func(t *testing.T) {
		config := &Config{DatacenterID: 1, InstanceID: 1}
		config.SetDefaults()
		if config.NowFunc == nil {
			t.Error("SetDefaults后NowFunc不应为nil")
		}
	})

	t.Run("Clone", func(t *testing.T) {
		config := &Config{
			DatacenterID:  1,
			InstanceID:    2,
			Epoch:         1000,
			EnableMetrics: true,
		}
		cloned := config.Clone()
		if cloned.DatacenterID != config.DatacenterID || cloned.Epoch != config.Epoch {
			t.Error("克隆的配置不匹配")
		}
		// 修改克隆不应影响原配置
		cloned.DatacenterID = 10
		if config.DatacenterID == 10 {
			t.Error("修改克隆影响了原配置")
		}
	})
}

// TestParser 测试解析器
func TestParser(t *testing.T) {
	parser := NewParser(0)
	gen, _ := New(5, 10)
	id, _ := gen.NextID()

	t.Run("Parse", func(t *testing.T) {
		info, err := parser.Parse(id)
		if err != nil {
			t.Fatalf("解析失败: %v", err)
		}
		if info.DatacenterID != 5 {
			t.Errorf("DatacenterID = %d, 期望 5", info.DatacenterID)
		}
		if info.InstanceID != 10 {
			t.Errorf("InstanceID = %d, 期望 10", info.InstanceID)
		}
	})

	t.Run("Parse_零值ID", func(t *testing.T) {
		if _, err := parser.Parse(0); err == nil {
			t.Error("期望得到错误")
		}
	})

	t.Run("ExtractTimestamp", func(t *testing.T) {
		timestamp := parser.ExtractTimestamp(id)
		if timestamp <= 0 {
			t.Error("时间戳应为正数")
		}
	})

	t.Run("ExtractTimestampAsTime", func(t *testing.T) {
		tm := parser.ExtractTimestampAsTime(id)
		if tm.IsZero() {
			t.Error("时间不应为零值")
		}
		if tm.After(time.Now()) {
			t.Error("时间不应在未来")
		}
	})

	t.Run("ExtractDatacenterID", func(t *testing.T) {
		dcID := parser.ExtractDatacenterID(id)
		if dcID != 5 {
			t.Errorf("DatacenterID = %d, 期望 5", dcID)
		}
	})

	t.Run("ExtractInstanceID", func(t *testing.T) {
		instID := parser.ExtractInstanceID(id)
		if instID != 10 {
			t.Errorf("InstanceID = %d, 期望 10", instID)
		}
	})

	t.Run("ExtractSequence", func(t *testing.T) {
		seq := parser.ExtractSequence(id)
		if seq < 0 {
			t.Error("序列号不应为负数")
		}
	})

	t.Run("自定义纪元还原绝对时间", func(t *testing.T) {
		const epoch = 1_600_000_000_000
		const relative = 123_456_789
		raw := (uint64(relative) << TimestampShift) | (uint64(7) << DatacenterIDShift) |
			(uint64(9) << InstanceIDShift) | 42

		info, err := NewParser(epoch).Parse(raw)
		if err != nil {
			t.Fatalf("解析失败: %v", err)
		}
		if info.Timestamp != epoch+relative {
			t.Errorf("Timestamp = %d, 期望 %d", info.Timestamp, epoch+relative)
		}
		if info.DatacenterID != 7 || info.InstanceID != 9 || info.Sequence != 42 {
			t.Errorf("字段 = (%d, %d, %d), 期望 (7, 9, 42)",
				info.DatacenterID, info.InstanceID, info.Sequence)
		}
	})
}

// TestValidator 测试验证器
func TestValidator(t *testing.T) {
	validator := NewValidator(0)
	gen, _ := New(1, 1)
	validID, _ := gen.NextID()

	t.Run("Validate_有效ID", func(t *testing.T) {
		err := validator.Validate(validID)
		if err != nil {
			t.Errorf("验证失败: %v", err)
		}
	})

	t.Run("Validate_零值ID", func(t *testing.T) {
		if err := validator.Validate(0); !errors.Is(err, core.ErrInvalidSnowflakeID) {
			t.Errorf("期望 ErrInvalidSnowflakeID, 得到: %v", err)
		}
	})

	t.Run("Validate_未来ID", func(t *testing.T) {
		// 构造10分钟后的时间戳，超出1分钟容差
		future := time.Now().Add(10 * time.Minute).UnixMilli()
		raw := uint64(future) << TimestampShift
		if err := validator.Validate(raw); !errors.Is(err, core.ErrInvalidSnowflakeID) {
			t.Errorf("期望 ErrInvalidSnowflakeID, 得到: %v", err)
		}
	})

	t.Run("ValidateBatch", func(t *testing.T) {
		ids := []uint64{validID, validID + 1, validID + 2}
		err := validator.ValidateBatch(ids)
		if err != nil {
			t.Errorf("批量验证失败: %v", err)
		}

		invalidIDs := []uint64{validID, 0, validID + 2}
		err = validator.ValidateBatch(invalidIDs)
		if err == nil {
			t.Error("期望得到错误")
		}
	})

	t.Run("ValidateBatch_nil切片", func(t *testing.T) {
		if err := validator.ValidateBatch(nil); err == nil {
			t.Error("期望得到错误")
		}
	})

	t.Run("ValidateBatch_空切片", func(t *testing.T) {
		if err := validator.ValidateBatch([]uint64{}); err != nil {
			t.Errorf("空切片应视为有效: %v", err)
		}
	})
}

// TestValidateID_Global 测试全局验证函数
func TestValidateID_Global(t *testing.T) {
	gen, _ := New(1, 1)
	validID, _ := gen.NextID()

	if err := ValidateID(validID); err != nil {
		t.Errorf("验证失败: %v", err)
	}

	if err := ValidateID(0); err == nil {
		t.Error("期望得到错误")
	}
}

// TestParseSnowflakeID 测试全局解析函数
func TestParseSnowflakeID(t *testing.T) {
	gen, _ := New(7, 15)
	id, _ := gen.NextID()

	timestamp, datacenterID, instanceID, sequence := ParseSnowflakeID(id)

	if datacenterID != 7 {
		t.Errorf("DatacenterID = %d, 期望 7", datacenterID)
	}
	if instanceID != 15 {
		t.Errorf("InstanceID = %d, 期望 15", instanceID)
	}
	if timestamp <= 0 {
		t.Error("时间戳应为正数")
	}
	if sequence < 0 {
		t.Error("序列号不应为负数")
	}

	// 零值ID返回占位值
	timestamp, datacenterID, instanceID, sequence = ParseSnowflakeID(0)
	if timestamp != 0 || datacenterID != -1 || instanceID != -1 || sequence != -1 {
		t.Error("零值ID应返回占位值")
	}
}

// TestGetTimestamp 测试全局时间戳提取函数
func TestGetTimestamp(t *testing.T) {
	gen, _ := New(1, 1)
	id, _ := gen.NextID()

	tm := GetTimestamp(id)
	if tm.IsZero() {
		t.Error("时间不应为零值")
	}
	if tm.After(time.Now()) {
		t.Error("时间不应在未来")
	}
}

// BenchmarkNextID 基准测试：生成ID
func BenchmarkNextID(b *testing.B) {
	gen, err := New(1, 1)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := gen.NextID()
		if err != nil && !core.IsRetryable(err) {
			b.Fatal(err)
		}
	}
}

// BenchmarkNextIDWait 基准测试：阻塞生成ID
func BenchmarkNextIDWait(b *testing.B) {
	gen, err := New(1, 1)
	if err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := gen.NextIDWait(ctx)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNextIDParallel 基准测试：并发生成ID
func BenchmarkNextIDParallel(b *testing.B) {
	gen, err := New(1, 1)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, err := gen.NextID()
			if err != nil && !core.IsRetryable(err) {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkNextIDBatch 基准测试：批量生成ID
func BenchmarkNextIDBatch(b *testing.B) {
	gen, err := New(1, 1)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := gen.NextIDBatch(100)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseID 基准测试：解析ID
func BenchmarkParseID(b *testing.B) {
	gen, _ := New(1, 1)
	id, _ := gen.NextID()
	parser := NewParser(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = parser.Parse(id)
	}
}

// BenchmarkValidateID 基准测试：验证ID
func BenchmarkValidateID(b *testing.B) {
	gen, _ := New(1, 1)
	id, _ := gen.NextID()
	validator := NewValidator(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = validator.Validate(id)
	}
}
