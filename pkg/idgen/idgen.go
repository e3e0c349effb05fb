// Package idgen 提供分布式唯一ID生成能力的统一入口。
//
// 子包职责划分：
//   - core:      通用接口与错误定义
//   - snowflake: Snowflake算法实现（43位时间戳 + 5位数据中心 + 5位实例 + 12位序列号）
//   - domain:    ID值类型（JSON安全序列化、解析、集合操作）
//   - registry:  多生成器注册表与工厂管理
//
// 本包只做薄封装，复杂场景请直接使用子包。
package idgen

import (
	"fmt"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
	"github.com/j4hangir/snowflake-id/pkg/idgen/registry"
	"github.com/j4hangir/snowflake-id/pkg/idgen/snowflake"
)

// NewGenerator 创建指定数据中心和实例标识的Snowflake生成器
// 使用默认纪元（Unix纪元）和默认配置，其他参数需要定制时请使用NewGeneratorWithConfig
func NewGenerator(datacenterID, instanceID int64) (core.Generator, error) {
	return snowflake.New(datacenterID, instanceID)
}

// NewGeneratorWithConfig 使用完整配置创建Snowflake生成器
func NewGeneratorWithConfig(config *snowflake.Config) (core.Generator, error) {
	return snowflake.NewWithConfig(config)
}

// GetDefaultGenerator 获取默认的Snowflake生成器（datacenterID=0, instanceID=0，适用于单机简单场景）
func GetDefaultGenerator() (core.Generator, error) {
	return registry.GetDefaultGenerator()
}

// GenerateID 使用默认生成器生成ID的便捷函数（这是最简单的使用方式，适合快速原型开发）
func GenerateID() (uint64, error) {
	gen, err := GetDefaultGenerator()
	if err != nil {
		return 0, fmt.Errorf("failed to get default generator: %w", err)
	}
	return gen.NextID()
}

// GenerateIDs 使用默认生成器批量生成ID的便捷函数（适合需要一次性生成多个ID的场景）
func GenerateIDs(count int) ([]uint64, error) {
	gen, err := GetDefaultGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get default generator: %w", err)
	}
	return gen.NextIDBatch(count)
}

// ParseID 解析ID的各组成部分
// epoch为生成该ID时使用的自定义纪元（毫秒），未使用自定义纪元时传0
func ParseID(id uint64, epoch int64) (*core.IDInfo, error) {
	return snowflake.NewParser(epoch).Parse(id)
}

// ValidateID 验证ID是否为结构合法的Snowflake ID（使用默认纪元）
func ValidateID(id uint64) error {
	return snowflake.ValidateID(id)
}
