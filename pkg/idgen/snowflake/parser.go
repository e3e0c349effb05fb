package snowflake

import (
	"fmt"
	"time"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

// Parser Snowflake ID解析器
// 说明：解析器按固定位布局提取字段，纪元不编码在ID中，
// 因此解析器必须用生成时的同一纪元构造，才能还原绝对时间
type Parser struct {
	epoch     int64            // 纪元起点（Unix毫秒）
	validator core.IDValidator // 验证器，用于解析前验证ID有效性
}

// NewParser 创建新的解析器实例
func NewParser(epoch int64) *Parser {
	return &Parser{
		epoch:     epoch,
		validator: NewValidator(epoch),
	}
}

// Parse 解析Snowflake ID，提取完整的元信息
// 实现core.IDParser接口
func (p *Parser) Parse(id uint64) (*core.IDInfo, error) {
	// 步骤1：先验证ID的有效性
	// 说明：只解析有效的ID，避免返回错误的元信息
	if err := p.validator.Validate(id); err != nil {
		return nil, fmt.Errorf("invalid snowflake ID: %w", err)
	}

	// 步骤2：提取各部分信息（使用位运算）
	// 时间戳：右移22位，加上纪元起点得到Unix毫秒时间戳
	timestamp := int64(id>>TimestampShift) + p.epoch

	// 数据中心ID：右移17位后与掩码31进行与运算，提取5位
	datacenterID := int64((id >> DatacenterIDShift) & MaxDatacenterID)

	// 实例ID：右移12位后与掩码31进行与运算，提取5位
	instanceID := int64((id >> InstanceIDShift) & MaxInstanceID)

	// 序列号：与掩码4095进行与运算，提取低12位
	sequence := int64(id & MaxSequence)

	// 步骤3：返回完整信息
	return &core.IDInfo{
		ID:           id,
		Timestamp:    timestamp,
		DatacenterID: datacenterID,
		InstanceID:   instanceID,
		Sequence:     sequence,
	}, nil
}

// ExtractTimestamp 从Snowflake ID中提取绝对时间戳（Unix毫秒）
// 实现core.IDParser接口
func (p *Parser) ExtractTimestamp(id uint64) int64 {
	// 快速失败：无效ID直接返回0
	if id == 0 {
		return 0
	}
	// 位运算提取时间戳部分并加上纪元起点
	return int64(id>>TimestampShift) + p.epoch
}

// ExtractTimestampAsTime 从Snowflake ID中提取时间戳并转换为time.Time
func (p *Parser) ExtractTimestampAsTime(id uint64) time.Time {
	timestamp := p.ExtractTimestamp(id)
	// 无效时间戳返回零值时间
	if timestamp <= 0 {
		return time.Time{}
	}
	// 将Unix毫秒时间戳转换为time.Time
	return time.UnixMilli(timestamp)
}

// ExtractDatacenterID 从Snowflake ID中提取数据中心ID
// 实现core.IDParser接口
func (p *Parser) ExtractDatacenterID(id uint64) int64 {
	// 快速失败：无效ID返回-1
	if id == 0 {
		return -1
	}
	// 位运算提取数据中心ID（右移17位，取低5位）
	return int64((id >> DatacenterIDShift) & MaxDatacenterID)
}

// ExtractInstanceID 从Snowflake ID中提取实例ID
// 实现core.IDParser接口
func (p *Parser) ExtractInstanceID(id uint64) int64 {
	// 快速失败：无效ID返回-1
	if id == 0 {
		return -1
	}
	// 位运算提取实例ID（右移12位，取低5位）
	return int64((id >> InstanceIDShift) & MaxInstanceID)
}

// ExtractSequence 从Snowflake ID中提取序列号
// 实现core.IDParser接口
func (p *Parser) ExtractSequence(id uint64) int64 {
	// 快速失败：无效ID返回-1
	if id == 0 {
		return -1
	}
	// 位运算提取序列号（取低12位）
	return int64(id & MaxSequence)
}

// ParseSnowflakeID 全局解析函数（使用默认纪元）
func ParseSnowflakeID(id uint64) (timestamp int64, datacenterID int64, instanceID int64, sequence int64) {
	if id == 0 {
		return 0, -1, -1, -1
	}
	timestamp = int64(id>>TimestampShift) + DefaultEpoch
	datacenterID = int64((id >> DatacenterIDShift) & MaxDatacenterID)
	instanceID = int64((id >> InstanceIDShift) & MaxInstanceID)
	sequence = int64(id & MaxSequence)
	return
}

// GetTimestamp 全局时间戳提取函数（使用默认纪元）
func GetTimestamp(id uint64) time.Time {
	return NewParser(DefaultEpoch).ExtractTimestampAsTime(id)
}
