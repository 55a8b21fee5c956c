// Package dsl 是基于 CEL (Common Expression Language) 的候选规则解释器，
// 供 Feed 后置阶段按配置表达式筛选候选。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/feedrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的表达式，线程安全，可对多个候选重复求值。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.score >= 0.5 / item.likes > 100 / item.price_band <= 2
//   - 品类：item.category == "beauty" / item.category in ["tech", "health"]
//   - 方法："collaborative" in item.methods
//   - 标签：label.recall_source == "content" / label.fusion.contains("collaborative")
//   - 请求：rctx.user_id == "u1" / rctx.scene == "home"
//
// 访问不存在的 label key 会报错，存在性用 "key" in label 判断。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("compile %q: expression must return bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Evaluate 对单个候选求值。
func (p *Program) Evaluate(item *core.ScoredCandidate, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 编译并执行一次表达式，空表达式视为 true。
// 需要对大量候选求值时应先 Compile。
func Evaluate(expr string, item *core.ScoredCandidate, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Evaluate(item, rctx)
}

func buildInput(sc *core.ScoredCandidate, rctx *core.RecommendContext) map[string]any {
	item := map[string]any{
		"id":      "",
		"score":   0.0,
		"methods": []string{},
	}
	label := make(map[string]any)

	if sc != nil {
		methods := make([]string, 0, len(sc.Methods))
		for _, m := range sc.Methods {
			methods = append(methods, string(m))
		}
		item["id"] = sc.ID()
		item["score"] = sc.Score
		item["methods"] = methods

		if c := sc.Content; c != nil {
			sentiment := core.DefaultSentiment
			if c.Sentiment != nil {
				sentiment = *c.Sentiment
			}
			category := c.Category
			if category == "" {
				category = core.DefaultCategory
			}
			item["title"] = c.Title
			item["category"] = string(category)
			item["likes"] = int64(c.Likes)
			item["comments"] = int64(c.Comments)
			item["shares"] = int64(c.Shares)
			item["engagement"] = int64(c.Engagement())
			item["sentiment"] = sentiment
			item["price_band"] = int64(c.PriceBand)
		}
		for k, v := range sc.Labels {
			label[k] = v.Value
		}
	}

	ctx := map[string]any{
		"user_id": "",
		"scene":   "",
		"params":  map[string]any{},
	}
	if rctx != nil {
		ctx["user_id"] = rctx.UserID
		ctx["scene"] = rctx.Scene
		if rctx.Params != nil {
			ctx["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  item,
		"label": label,
		"rctx":  ctx,
	}
}
