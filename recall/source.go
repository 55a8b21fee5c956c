package recall

import (
	"context"

	"github.com/rushteam/feedrec/core"
)

// Source 表示一个可复用的打分源（内容/协同/热门）。
// 你可以把它理解为“可并发 fan-out 的策略单元”：只读账本与候选集合，不修改任何共享状态。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.ScoredCandidate, error)
}
