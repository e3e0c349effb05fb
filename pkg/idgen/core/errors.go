package core

import "errors"

var (
	// ErrInvalidTimestamp 时间戳超出有效范围
	ErrInvalidTimestamp = errors.New("invalid timestamp: must be between 0 and 8796093022207")

	// ErrInvalidDatacenterID 数据中心ID超出有效范围
	ErrInvalidDatacenterID = errors.New("invalid datacenter id: must be between 0 and 31")

	// ErrInvalidInstanceID 实例ID超出有效范围
	ErrInvalidInstanceID = errors.New("invalid instance id: must be between 0 and 31")

	// ErrInvalidSequence 序列号超出有效范围
	ErrInvalidSequence = errors.New("invalid sequence: must be between 0 and 4095")

	// ErrInvalidEpoch 纪元起点无效（为负或晚于当前时间）
	ErrInvalidEpoch = errors.New("invalid epoch: must be between 0 and current time")

	// ErrTimestampOverflow 43位时间戳空间已耗尽，对该纪元为永久性错误
	ErrTimestampOverflow = errors.New("timestamp overflow: 43-bit space exhausted for this epoch")

	// ErrSequenceExhausted 当前毫秒内4096个序列号已用完，下一毫秒重试即可恢复
	ErrSequenceExhausted = errors.New("sequence exhausted: retry on next millisecond")

	// ErrClockMovedBackwards 检测到时钟回拨，时钟追上后重试即可恢复
	ErrClockMovedBackwards = errors.New("clock moved backwards: refusing to generate id")

	// ErrInvalidSnowflakeID 无效的Snowflake ID
	ErrInvalidSnowflakeID = errors.New("invalid snowflake id: id must not be zero")

	// ErrInvalidBatchSize 批量生成数量无效
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrNilConfig 配置为nil
	ErrNilConfig = errors.New("config cannot be nil")

	// ErrGeneratorNotFound 生成器未找到
	ErrGeneratorNotFound = errors.New("generator not found")

	// ErrGeneratorAlreadyExists 生成器已存在
	ErrGeneratorAlreadyExists = errors.New("generator already exists")

	// ErrInvalidGeneratorType 无效的生成器类型
	ErrInvalidGeneratorType = errors.New("invalid generator type")

	// ErrInvalidKey 无效的键
	ErrInvalidKey = errors.New("invalid key")

	// ErrFactoryNotFound 工厂未找到
	ErrFactoryNotFound = errors.New("factory not found")

	// ErrParserNotFound 解析器未找到
	ErrParserNotFound = errors.New("parser not found")

	// ErrValidatorNotFound 验证器未找到
	ErrValidatorNotFound = errors.New("validator not found")

	// ErrMaxGeneratorsReached 达到最大生成器数量
	ErrMaxGeneratorsReached = errors.New("maximum number of generators reached")
)

// IsRetryable 判断错误是否为可重试的瞬时状态。
// 序列号耗尽和时钟回拨都不是真正的失败：前者在下一毫秒恢复，
// 后者在时钟追上后恢复。调用方自行决定重试策略。
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSequenceExhausted) || errors.Is(err, ErrClockMovedBackwards)
}
