// Package engine 是混合推荐打分引擎：内容相似度与协同过滤两路打分，加权融合后生成个性化 Feed。
//
// 引擎本身无状态，唯一跨调用的状态是交互账本（core.InteractionLedger）。
// 候选内容由调用方在每次排序时提供，引擎只读不改。
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/feature"
	"github.com/rushteam/feedrec/filter"
	"github.com/rushteam/feedrec/pipeline"
	"github.com/rushteam/feedrec/recall"
	"github.com/rushteam/feedrec/rerank"
)

// Engine 是混合推荐引擎。
type Engine struct {
	ledger core.InteractionLedger
	cfg    core.ScoringConfig
	log    zerolog.Logger
	stages []pipeline.Node

	profiles *feature.ProfileBuilder
}

// New 基于交互账本创建引擎。
func New(ledger core.InteractionLedger, opts ...Option) *Engine {
	e := &Engine{
		ledger: ledger,
		cfg:    core.DefaultScoringConfig(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.profiles = feature.NewProfileBuilder(ledger)
	return e
}

// Ledger 返回引擎使用的交互账本。
func (e *Engine) Ledger() core.InteractionLedger { return e.ledger }

// Config 返回打分参数。
func (e *Engine) Config() core.ScoringConfig { return e.cfg }

var (
	errEmptyUser    = core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: user id is empty")
	errEmptyContent = core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: content id is empty")
)

// Record 记录一次交互，权重 = 行为基础权重 × score。
// 用户或内容 ID 为空时返回 INVALID_INPUT，其余输入（未知行为、负分）按默认规则降级。
// 返回值与写入账本的记录一致（含 ID 与 CreatedAt）。
func (e *Engine) Record(ctx context.Context, userID, contentID string, kind core.InteractionKind, score float64) (core.Interaction, error) {
	if userID == "" {
		return core.Interaction{}, errEmptyUser
	}
	if contentID == "" {
		return core.Interaction{}, errEmptyContent
	}

	in := core.Interaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		ContentID: contentID,
		Kind:      kind,
		Score:     score,
		Weight:    e.cfg.Interaction.WeightOf(kind, score),
		CreatedAt: time.Now(),
	}
	if err := e.ledger.Record(ctx, in); err != nil {
		return core.Interaction{}, err
	}

	e.log.Debug().
		Str("user_id", userID).
		Str("content_id", contentID).
		Str("kind", string(kind)).
		Float64("weight", in.Weight).
		Msg("interaction recorded")
	return in, nil
}

// ProfileFor 返回用户在给定候选集合上的画像向量。
func (e *Engine) ProfileFor(ctx context.Context, userID string, candidates []*core.ContentItem) ([]float64, error) {
	return e.profiles.ProfileFor(ctx, userID, core.NewCandidateSet(candidates))
}

// ScoreContent 返回基于内容相似度的排序结果（不含已交互内容）。
func (e *Engine) ScoreContent(ctx context.Context, userID string, candidates []*core.ContentItem, topK int) ([]*core.ScoredCandidate, error) {
	src := e.contentSource(topK)
	return src.Recall(ctx, core.NewRecommendContext(userID, candidates))
}

// ScoreCollaborative 返回基于相似用户的排序结果（不含已交互内容）。
func (e *Engine) ScoreCollaborative(ctx context.Context, userID string, candidates []*core.ContentItem, topK int) ([]*core.ScoredCandidate, error) {
	src := e.collaborativeSource(topK)
	return src.Recall(ctx, core.NewRecommendContext(userID, candidates))
}

// Personalize 生成个性化 Feed：
//  1. 内容、协同两路各取 limit 个并发打分，按权重融合、稳定降序
//  2. 截取前 limit 个
//  3. 去掉分数低于 minScore 的结果（先截断后过滤）
//  4. 执行配置的后置阶段
//
// limit <= 0 时返回空 Feed。返回结果长度 <= limit，且每个分数 >= minScore。
func (e *Engine) Personalize(ctx context.Context, userID string, candidates []*core.ContentItem, limit int, minScore float64) ([]*core.ScoredCandidate, error) {
	if limit <= 0 {
		return []*core.ScoredCandidate{}, nil
	}

	rctx := core.NewRecommendContext(userID, candidates)
	rctx.Scene = "feed"
	rctx.Params["limit"] = limit
	rctx.Params["min_score"] = minScore

	p := &pipeline.Pipeline{}
	p.Append(
		recall.NewHybrid(e.contentSource(limit), e.collaborativeSource(limit), e.cfg.ContentWeight, e.cfg.CollaborativeWeight),
		&rerank.TopNNode{N: limit},
		&filter.FilterNode{Filters: []filter.Filter{&filter.MinScoreFilter{MinScore: minScore}}},
	)
	p.Append(e.stages...)

	start := time.Now()
	out, err := p.Run(ctx, rctx, nil)
	if err != nil {
		e.log.Error().Err(err).Str("user_id", userID).Msg("personalize failed")
		return nil, err
	}
	if out == nil {
		out = []*core.ScoredCandidate{}
	}

	e.log.Debug().
		Str("user_id", userID).
		Int("candidates", rctx.Candidates.Len()).
		Int("limit", limit).
		Float64("min_score", minScore).
		Int("size", len(out)).
		Dur("took", time.Since(start)).
		Msg("feed personalized")
	return out, nil
}

func (e *Engine) contentSource(topK int) *recall.ContentRecall {
	return &recall.ContentRecall{Ledger: e.ledger, TopK: topK}
}

func (e *Engine) collaborativeSource(topK int) *recall.UserBasedCF {
	return &recall.UserBasedCF{Ledger: e.ledger, TopK: topK, NeighborThreshold: e.cfg.NeighborThreshold}
}
