package filter

import (
	"context"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式筛选候选：表达式为 true 的候选保留，为 false 的过滤。
//
// 示例：
//
//	f, _ := filter.NewExprFilter(`item.sentiment >= 0.3 && item.category != "other"`)
//
// 表达式求值出错时返回 error，FilterNode 会保留该候选。
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式并创建过滤器。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回原始表达式。
func (f *ExprFilter) Expr() string {
	return f.prg.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.ScoredCandidate,
) (bool, error) {
	keep, err := f.prg.Evaluate(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
