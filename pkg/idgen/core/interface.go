package core

// IDGenerator ID生成器基础接口
type IDGenerator interface {
	// NextID 生成下一个唯一ID（线程安全）
	NextID() (uint64, error)
}

// BatchGenerator 批量ID生成接口
type BatchGenerator interface {
	IDGenerator

	// NextIDBatch 批量生成指定数量的ID（线程安全）
	NextIDBatch(n int) ([]uint64, error)
}

// ConfigurableGenerator 可配置的生成器接口
type ConfigurableGenerator interface {
	// GetDatacenterID 获取数据中心ID
	// 返回值：数据中心ID（0-31）
	GetDatacenterID() int64

	// GetInstanceID 获取实例ID
	// 返回值：实例ID（0-31）
	GetInstanceID() int64

	// GetEpoch 获取纪元起点（Unix毫秒）
	GetEpoch() int64
}

// MonitorableGenerator 可监控的生成器接口
type MonitorableGenerator interface {
	// GetMetrics 获取性能监控指标
	GetMetrics() map[string]uint64

	// ResetMetrics 重置性能监控指标
	ResetMetrics()

	// GetIDCount 获取已生成的ID总数
	GetIDCount() uint64
}

// ParseableGenerator 可验证+解析的生成器接口
type ParseableGenerator interface {
	// ParseID 解析ID，提取其中的时间戳、数据中心ID等元信息
	ParseID(id uint64) (*IDInfo, error)

	// ValidateID 验证ID的有效性
	ValidateID(id uint64) error
}

// Generator 完整功能的生成器接口
type Generator interface {
	IDGenerator
	BatchGenerator
	ConfigurableGenerator
	MonitorableGenerator
	ParseableGenerator
}

// GeneratorFactory 生成器工厂接口
type GeneratorFactory interface {
	// Create 根据配置创建生成器实例
	Create(config any) (Generator, error)
}

// IDInfo ID信息结构
type IDInfo struct {
	ID           uint64 // 原始ID值
	Timestamp    int64  // 绝对时间戳（Unix毫秒，已加上纪元起点）
	DatacenterID int64  // 数据中心ID（0-31）
	InstanceID   int64  // 实例ID（0-31）
	Sequence     int64  // 序列号（0-4095，同一毫秒内的序号）
}

// IDParser ID解析器接口
type IDParser interface {
	// Parse 解析ID，提取完整的元信息
	Parse(id uint64) (*IDInfo, error)

	// ExtractTimestamp 提取绝对时间戳（Unix毫秒）
	ExtractTimestamp(id uint64) int64

	// ExtractDatacenterID 提取数据中心ID
	ExtractDatacenterID(id uint64) int64

	// ExtractInstanceID 提取实例ID
	ExtractInstanceID(id uint64) int64

	// ExtractSequence 提取序列号
	ExtractSequence(id uint64) int64
}

// IDValidator ID验证器接口
type IDValidator interface {
	// Validate 验证ID的有效性
	Validate(id uint64) error

	// ValidateBatch 批量验证ID
	ValidateBatch(ids []uint64) error
}
