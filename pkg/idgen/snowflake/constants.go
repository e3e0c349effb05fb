package snowflake

import "time"

const (
	// DefaultEpoch 默认纪元起点（Unix纪元，毫秒）
	// 说明：纪元起点可按部署配置，所有时间戳相对该起点计算；
	// 解码时必须使用生成时的同一纪元（纪元不编码在ID内）
	DefaultEpoch int64 = 0

	// 位数分配
	TimestampBits    = 43 // 时间戳位数（距纪元毫秒偏移）
	DatacenterIDBits = 5  // 数据中心ID位数
	InstanceIDBits   = 5  // 实例ID位数
	SequenceBits     = 12 // 序列号位数

	// 最大值计算(切记不是个数)
	MaxTimestamp    = -1 ^ (-1 << TimestampBits)    // 8796093022207 (2^43 - 1)
	MaxDatacenterID = -1 ^ (-1 << DatacenterIDBits) // 31 (2^5 - 1) [0, 31]
	MaxInstanceID   = -1 ^ (-1 << InstanceIDBits)   // 31 (2^5 - 1) [0, 31]
	MaxSequence     = -1 ^ (-1 << SequenceBits)     // 4095 (2^12 - 1) [0, 4095]

	// 位移量
	InstanceIDShift   = SequenceBits                                     // 12
	DatacenterIDShift = SequenceBits + InstanceIDBits                    // 17
	TimestampShift    = SequenceBits + InstanceIDBits + DatacenterIDBits // 22

	// 等待下一毫秒时的休眠时间（微秒）
	sleepDuration = 100 * time.Microsecond

	// 批量生成最大数量（支持跨毫秒生成）
	maxBatchSize = 100_000

	// 允许的未来时间容差（毫秒）
	maxFutureTimeTolerance = 60 * 1000 // 1分钟
)
