package core

import "strings"

// Category 是内容品类。品类集合是封闭的：五个已知品类各占 one-hot 的一个槽位，
// 其余取值统一落到 CategoryOther（编码为全 0 段）。
type Category string

const (
	CategoryBeauty    Category = "beauty"
	CategoryFashion   Category = "fashion"
	CategoryHealth    Category = "health"
	CategoryTech      Category = "tech"
	CategoryLifestyle Category = "lifestyle"

	// CategoryOther 表示未知品类，不占 one-hot 槽位。
	CategoryOther Category = "other"
)

// DefaultCategory 是缺省品类。
const DefaultCategory = CategoryLifestyle

// Categories 按 one-hot 槽位顺序列出已知品类。
var Categories = []Category{
	CategoryBeauty,
	CategoryFashion,
	CategoryHealth,
	CategoryTech,
	CategoryLifestyle,
}

// ParseCategory 把任意字符串规范化为 Category。
// 空字符串视为缺省品类，无法识别的取值返回 CategoryOther。
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultCategory
	}
	c := Category(s)
	if c.Slot() < 0 {
		return CategoryOther
	}
	return c
}

// Slot 返回品类在 one-hot 段中的下标；未知品类返回 -1。
// 空品类按缺省品类处理。
func (c Category) Slot() int {
	if c == "" {
		c = DefaultCategory
	}
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return -1
}

// Known 判断是否为封闭集合中的已知品类。
func (c Category) Known() bool {
	return c.Slot() >= 0
}

func (c Category) String() string {
	if c == "" {
		return string(DefaultCategory)
	}
	return string(c)
}
