package core

// 价格带取值范围：1=低，2=中，3=高。
const (
	PriceBandLow     = 1
	PriceBandMid     = 2
	PriceBandHigh    = 3
	DefaultPriceBand = PriceBandMid
)

// DefaultSentiment 是情绪分缺失时的中性值。
const DefaultSentiment = 0.5

// ContentItem 是内容目录中的一条短内容（帖子）。
// 目录由外部提供，引擎只在一次排序调用内以指针引用，不做修改。
//
// 缺失字段约定：
//   - Category 为空：按 lifestyle 处理
//   - Sentiment 为 nil：按 0.5 处理
//   - PriceBand 为 0：按 2 处理
type ContentItem struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Likes    int    `json:"likes" yaml:"likes"`
	Comments int    `json:"comments" yaml:"comments"`
	Shares   int    `json:"shares" yaml:"shares"`

	Category  Category `json:"category,omitempty" yaml:"category,omitempty"`
	Sentiment *float64 `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
	PriceBand int      `json:"price_band,omitempty" yaml:"price_band,omitempty"`
}

// Engagement 返回互动总量（点赞 + 评论 + 分享），负数按 0 计。
func (c *ContentItem) Engagement() int {
	if c == nil {
		return 0
	}
	return nonNegative(c.Likes) + nonNegative(c.Comments) + nonNegative(c.Shares)
}

// Float 返回 v 的指针，便于构造 Sentiment。
func Float(v float64) *float64 {
	return &v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
