// Package simulate 用虚拟人设浏览内容目录，产生交互数据，用于冷启动与效果演示。
package simulate

import (
	"slices"

	"github.com/rushteam/feedrec/core"
)

// Persona 是一个虚拟用户人设。
type Persona struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// InterestWeights 品类兴趣权重，未列出的品类为 0
	InterestWeights map[core.Category]float64 `json:"interest_weights"`

	// PreferredPriceBands 偏好的价格带，命中时兴趣 +PriceBonus
	PreferredPriceBands []int `json:"preferred_price_bands"`

	LikeRate    float64 `json:"like_rate"`
	CommentRate float64 `json:"comment_rate"`
	ShareRate   float64 `json:"share_rate"`
	SaveRate    float64 `json:"save_rate"`
}

// PriceBonus 是价格带命中时的兴趣加成。
const PriceBonus = 0.2

// Interest 返回人设对内容的兴趣分：品类权重，价格带命中时加 PriceBonus。
func (p Persona) Interest(item *core.ContentItem) float64 {
	category := item.Category
	if category == "" {
		category = core.DefaultCategory
	}
	interest := p.InterestWeights[category]

	band := item.PriceBand
	if band <= 0 {
		band = core.DefaultPriceBand
	}
	if slices.Contains(p.PreferredPriceBands, band) {
		interest += PriceBonus
	}
	return interest
}

// DefaultPersonas 返回三个默认人设。
func DefaultPersonas() []Persona {
	return []Persona{
		{
			ID:          "persona-urban-professional",
			Name:        "一线都市白领女",
			Description: "25-35岁，关注时尚美妆、通勤装扮、品质生活",
			InterestWeights: map[core.Category]float64{
				core.CategoryBeauty:    0.4,
				core.CategoryFashion:   0.3,
				core.CategoryLifestyle: 0.3,
			},
			PreferredPriceBands: []int{core.PriceBandMid, core.PriceBandHigh},
			LikeRate:            0.6,
			CommentRate:         0.2,
			ShareRate:           0.1,
			SaveRate:            0.4,
		},
		{
			ID:          "persona-beauty-enthusiast",
			Name:        "美妆重度用户",
			Description: "20-30岁，精致女孩，主要关注美妆产品和教程",
			InterestWeights: map[core.Category]float64{
				core.CategoryBeauty:  0.7,
				core.CategoryFashion: 0.2,
				core.CategoryTech:    0.1,
			},
			PreferredPriceBands: []int{core.PriceBandLow, core.PriceBandMid},
			LikeRate:            0.8,
			CommentRate:         0.4,
			ShareRate:           0.2,
			SaveRate:            0.6,
		},
		{
			ID:          "persona-value-seeker",
			Name:        "三线城市性价比男",
			Description: "25-40岁，关注数码、运动，价格敏感",
			InterestWeights: map[core.Category]float64{
				core.CategoryTech:      0.5,
				core.CategoryHealth:    0.3,
				core.CategoryLifestyle: 0.2,
			},
			PreferredPriceBands: []int{core.PriceBandLow},
			LikeRate:            0.3,
			CommentRate:         0.1,
			ShareRate:           0.05,
			SaveRate:            0.5,
		},
	}
}
