// Package fee 计算学生接单需支付的一次性信息费
// 信息费按"课时数 × 课时单价"计算，课时数由年级段与每周次数查表得到
package fee

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fee_tables.yaml
var embeddedTable []byte

// Tier 一个年级段的课时折算表
type Tier struct {
	Name     string    `yaml:"name"`
	Keywords []string  `yaml:"keywords"` // 年级文案包含任一关键字即命中，为空表示兜底
	Hours    []float64 `yaml:"hours"`    // 下标 i 对应每周 i+1 次
}

// Table 全部年级段，按顺序匹配
type Table struct {
	Tiers []Tier `yaml:"tiers"`
}

// ParseTable 解析 YAML 课时表并校验
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("解析课时表失败: %w", err)
	}
	if len(t.Tiers) == 0 {
		return nil, fmt.Errorf("课时表为空")
	}
	for i, tier := range t.Tiers {
		if len(tier.Hours) == 0 {
			return nil, fmt.Errorf("年级段 %s 没有配置课时", tier.Name)
		}
		if len(tier.Keywords) == 0 && i != len(t.Tiers)-1 {
			return nil, fmt.Errorf("兜底年级段 %s 必须放在最后", tier.Name)
		}
	}
	if len(t.Tiers[len(t.Tiers)-1].Keywords) != 0 {
		return nil, fmt.Errorf("课时表缺少兜底年级段")
	}
	return &t, nil
}

// LoadTableFile 从文件加载课时表，path 为空时使用内置表
func LoadTableFile(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取课时表 %s: %w", path, err)
	}
	return ParseTable(data)
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// DefaultTable 内置课时表
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		t, err := ParseTable(embeddedTable)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// match 按年级文案选择年级段
func (t *Table) match(grade string) Tier {
	for _, tier := range t.Tiers {
		if len(tier.Keywords) == 0 {
			return tier
		}
		for _, kw := range tier.Keywords {
			if strings.Contains(grade, kw) {
				return tier
			}
		}
	}
	return t.Tiers[len(t.Tiers)-1]
}

// hours 查表：次数小于 1 按 1 次，超出表长按最后一档
func (tier Tier) hours(freq int) float64 {
	if freq < 1 {
		freq = 1
	}
	if freq > len(tier.Hours) {
		freq = len(tier.Hours)
	}
	return tier.Hours[freq-1]
}
