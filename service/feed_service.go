package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/engine"
	"github.com/rushteam/feedrec/feedback"
	"github.com/rushteam/feedrec/pkg/metrics"
	"github.com/rushteam/feedrec/recall"
)

// Catalog 是服务层依赖的内容目录。
type Catalog interface {
	Upsert(items ...*core.ContentItem) error
	Items() []*core.ContentItem
	Get(id string) (*core.ContentItem, bool)
}

// FeedService 把打分引擎、用户管理、内容目录与热门榜单组合成面向接口层的服务。
type FeedService struct {
	Engine  *engine.Engine
	Users   *UserManager
	Catalog Catalog

	// Store 有序集合存储（可选）：热门榜单按交互权重累加，黑名单记录被屏蔽的内容
	Store        core.KeyValueStore
	TrendingKey  string
	BlacklistKey string

	// Feedback 曝光与交互事件采集（可选）
	Feedback feedback.Collector

	Logger zerolog.Logger
}

// NewFeedService 创建 Feed 服务，store 可以为 nil（热门榜单退化为按互动总量，黑名单管理不可用）。
func NewFeedService(eng *engine.Engine, users *UserManager, catalog Catalog, store core.KeyValueStore, log zerolog.Logger) *FeedService {
	return &FeedService{
		Engine:      eng,
		Users:       users,
		Catalog:     catalog,
		Store:       store,
		TrendingKey: recall.DefaultHotKey,
		Logger:      log,
	}
}

// AddContent 写入内容目录。
func (s *FeedService) AddContent(items ...*core.ContentItem) error {
	if err := s.Catalog.Upsert(items...); err != nil {
		return err
	}
	s.Logger.Debug().Int("count", len(items)).Msg("content upserted")
	return nil
}

// RecordInteraction 记录一次交互：写入账本，已注册用户追加浏览记录，热门榜单按交互权重累加，并投递反馈事件。
// 浏览记录、热门榜单与反馈的失败只记日志，不影响交互写入结果。
func (s *FeedService) RecordInteraction(ctx context.Context, userID, contentID string, kind core.InteractionKind, score float64) (core.Interaction, error) {
	in, err := s.Engine.Record(ctx, userID, contentID, kind, score)
	if err != nil {
		return core.Interaction{}, err
	}
	metrics.RecordInteraction(string(kind))

	if s.Users != nil && s.Users.Exists(userID) {
		_ = s.Users.AddView(userID, contentID)
	}
	if s.Store != nil && in.Weight > 0 {
		if _, err := s.Store.ZIncrBy(ctx, s.TrendingKey, in.Weight, contentID); err != nil {
			s.Logger.Warn().Err(err).Str("content_id", contentID).Msg("trending update failed")
		}
	}
	if s.Feedback != nil {
		if err := s.Feedback.RecordInteraction(ctx, in); err != nil {
			s.Logger.Warn().Err(err).Str("content_id", contentID).Msg("feedback record failed")
		}
	}

	s.Logger.Info().
		Str("user_id", userID).
		Str("content_id", contentID).
		Str("kind", string(kind)).
		Msg("interaction recorded")
	return in, nil
}

// Feed 为已注册用户生成个性化 Feed。limit <= 0 时使用默认长度，并限制在上限以内。
// 标题命中用户屏蔽关键词的内容会被移除，返回的内容会追加到用户浏览记录。
func (s *FeedService) Feed(ctx context.Context, userID string, limit int, minScore float64) ([]*core.ScoredCandidate, error) {
	profile, err := s.Users.Get(userID)
	if err != nil {
		return nil, err
	}
	limit = s.Engine.Config().ResolveLimit(limit)

	start := time.Now()
	feed, err := s.Engine.Personalize(ctx, userID, s.Catalog.Items(), limit, minScore)
	metrics.RecordFeed(len(feed), time.Since(start), err)
	if err != nil {
		s.Logger.Error().Err(err).Str("user_id", userID).Msg("feed generation failed")
		return nil, err
	}

	feed = dropBlocked(feed, profile)
	for _, sc := range feed {
		_ = s.Users.AddView(userID, sc.ID())
	}
	if s.Feedback != nil && len(feed) > 0 {
		if err := s.Feedback.RecordImpressions(ctx, userID, feed); err != nil {
			s.Logger.Warn().Err(err).Str("user_id", userID).Msg("feedback impressions failed")
		}
	}

	s.Logger.Info().
		Str("user_id", userID).
		Int("limit", limit).
		Float64("min_score", minScore).
		Int("size", len(feed)).
		Msg("feed generated")
	return feed, nil
}

// dropBlocked 移除标题命中用户屏蔽关键词的内容，保持原有顺序。
func dropBlocked(feed []*core.ScoredCandidate, p *core.UserProfile) []*core.ScoredCandidate {
	if len(p.BlockedKeywords) == 0 {
		return feed
	}
	out := feed[:0]
	for _, sc := range feed {
		if sc.Content != nil && p.Blocks(sc.Content.Title) {
			continue
		}
		out = append(out, sc)
	}
	return out
}

// DefaultMinScore 返回配置的默认分数下限。
func (s *FeedService) DefaultMinScore() float64 {
	return s.Engine.Config().MinScore
}

// SavePost 为用户收藏内容。
func (s *FeedService) SavePost(_ context.Context, userID, contentID string) error {
	if err := s.Users.SavePost(userID, contentID); err != nil {
		return err
	}
	s.Logger.Info().Str("user_id", userID).Str("content_id", contentID).Msg("post saved")
	return nil
}

// Trending 返回热门内容：优先按交互权重榜单，榜单为空时按互动总量。
func (s *FeedService) Trending(ctx context.Context, limit int) ([]*core.ScoredCandidate, error) {
	hot := &recall.Hot{
		Store: s.Store,
		Key:   s.TrendingKey,
		TopK:  s.Engine.Config().ResolveLimit(limit),
	}
	items, err := hot.Recall(ctx, core.NewRecommendContext("", s.Catalog.Items()))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*core.ScoredCandidate{}
	}
	return items, nil
}

// Analytics 是用户的互动统计。
type Analytics struct {
	UserID            string             `json:"user_id"`
	Username          string             `json:"username"`
	TotalViews        int                `json:"total_views"`
	TotalSaved        int                `json:"total_saved"`
	TotalInteractions int                `json:"total_interactions"`
	ByKind            map[string]int     `json:"by_kind"`
	Interests         map[string]float64 `json:"interests"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// Analytics 汇总用户的浏览、收藏与交互数据。
func (s *FeedService) Analytics(ctx context.Context, userID string) (*Analytics, error) {
	p, err := s.Users.Get(userID)
	if err != nil {
		return nil, err
	}
	history, err := s.Engine.Ledger().InteractionsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	byKind := make(map[string]int)
	for _, in := range history {
		byKind[string(in.Kind)]++
	}
	return &Analytics{
		UserID:            p.UserID,
		Username:          p.Username,
		TotalViews:        len(p.ViewHistory),
		TotalSaved:        len(p.SavedPosts),
		TotalInteractions: len(history),
		ByKind:            byKind,
		Interests:         p.Interests,
		GeneratedAt:       time.Now(),
	}, nil
}
