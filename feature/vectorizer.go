package feature

import (
	"math"

	"github.com/rushteam/feedrec/core"
)

// 特征向量布局：[likes, comments, shares, onehot(品类 x5), sentiment, price_band]。
const (
	idxLikes     = 0
	idxComments  = 1
	idxShares    = 2
	idxCategory  = 3
	idxSentiment = idxCategory + 5
	idxPriceBand = idxSentiment + 1

	// Dimension 是全系统统一的特征维度，不随目录内容变化。
	Dimension = idxPriceBand + 1
)

// Vectorize 把内容转换为定长特征向量。
//
// 纯函数：相同输入总是得到逐位相同的输出。缺失字段使用默认值
// （品类 lifestyle、情绪 0.5、价格带 2），未知品类的 one-hot 段全为 0，
// 负的互动数按 0 处理，nil 内容按全部缺失处理。
func Vectorize(c *core.ContentItem) []float64 {
	vec := make([]float64, Dimension)
	if c == nil {
		c = &core.ContentItem{}
	}

	vec[idxLikes] = float64(max(c.Likes, 0))
	vec[idxComments] = float64(max(c.Comments, 0))
	vec[idxShares] = float64(max(c.Shares, 0))

	if slot := c.Category.Slot(); slot >= 0 {
		vec[idxCategory+slot] = 1
	}

	vec[idxSentiment] = sentimentOf(c)
	vec[idxPriceBand] = float64(priceBandOf(c))
	return vec
}

// NeutralVector 返回全 0.5 的中性画像向量。
func NeutralVector() []float64 {
	vec := make([]float64, Dimension)
	for i := range vec {
		vec[i] = 0.5
	}
	return vec
}

func sentimentOf(c *core.ContentItem) float64 {
	if c.Sentiment == nil {
		return core.DefaultSentiment
	}
	s := *c.Sentiment
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return core.DefaultSentiment
	}
	return s
}

func priceBandOf(c *core.ContentItem) int {
	switch {
	case c.PriceBand <= 0:
		return core.DefaultPriceBand
	case c.PriceBand > core.PriceBandHigh:
		return core.PriceBandHigh
	default:
		return c.PriceBand
	}
}
