package simulate

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rushteam/feedrec/core"
)

// Recorder 接收模拟产生的交互与收藏，通常是 service.FeedService。
type Recorder interface {
	RecordInteraction(ctx context.Context, userID, contentID string, kind core.InteractionKind, score float64) (core.Interaction, error)
	SavePost(ctx context.Context, userID, contentID string) error
}

// Registrar 用于注册人设对应的用户，通常是 service.UserManager。
type Registrar interface {
	Create(userID, username, email string) (*core.UserProfile, error)
}

// Source 提供模拟时浏览的内容。
type Source interface {
	Items() []*core.ContentItem
}

// Simulator 让每个人设逐条浏览内容目录：
// 随机数低于兴趣分时记一次 view，然后按各自概率 like / comment / share / 收藏。
// 相同 Seed、相同目录与人设时结果确定。
type Simulator struct {
	Personas []Persona
	Catalog  Source
	Recorder Recorder

	// Seed 随机种子
	Seed uint64

	// Limiter 限制写入速率（可选）
	Limiter *rate.Limiter

	Logger zerolog.Logger
}

// Report 是一次模拟的统计结果。
type Report struct {
	Rounds    int            `json:"rounds"`
	Views     int            `json:"views"`
	Likes     int            `json:"likes"`
	Comments  int            `json:"comments"`
	Shares    int            `json:"shares"`
	Saves     int            `json:"saves"`
	ByPersona map[string]int `json:"by_persona"`
}

// Register 为每个人设注册用户，已存在的用户跳过。
func (s *Simulator) Register(reg Registrar) error {
	for _, p := range s.Personas {
		if _, err := reg.Create(p.ID, p.Name, ""); err != nil && !core.IsAlreadyExists(err) {
			return err
		}
	}
	return nil
}

// Run 执行 rounds 轮模拟。ctx 取消时返回已完成部分的统计与 ctx 错误。
func (s *Simulator) Run(ctx context.Context, rounds int) (Report, error) {
	report := Report{ByPersona: make(map[string]int)}
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))

	for round := 0; round < rounds; round++ {
		items := s.Catalog.Items()
		for _, p := range s.Personas {
			for _, item := range items {
				if err := s.browse(ctx, rng, p, item, &report); err != nil {
					return report, err
				}
			}
		}
		report.Rounds++
		s.Logger.Info().
			Int("round", round+1).
			Int("views", report.Views).
			Int("likes", report.Likes).
			Msg("simulation round finished")
	}
	return report, nil
}

func (s *Simulator) browse(ctx context.Context, rng *rand.Rand, p Persona, item *core.ContentItem, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rng.Float64() >= p.Interest(item) {
		return nil
	}

	// 先抽完所有随机数，保证结果只取决于种子
	actions := []core.InteractionKind{core.InteractionView}
	if rng.Float64() < p.LikeRate {
		actions = append(actions, core.InteractionLike)
	}
	if rng.Float64() < p.CommentRate {
		actions = append(actions, core.InteractionComment)
	}
	if rng.Float64() < p.ShareRate {
		actions = append(actions, core.InteractionShare)
	}
	save := rng.Float64() < p.SaveRate

	for _, kind := range actions {
		if err := s.wait(ctx); err != nil {
			return err
		}
		if _, err := s.Recorder.RecordInteraction(ctx, p.ID, item.ID, kind, 1); err != nil {
			return err
		}
		report.ByPersona[p.ID]++
		switch kind {
		case core.InteractionView:
			report.Views++
		case core.InteractionLike:
			report.Likes++
		case core.InteractionComment:
			report.Comments++
		case core.InteractionShare:
			report.Shares++
		}
	}
	if save {
		if err := s.Recorder.SavePost(ctx, p.ID, item.ID); err != nil {
			s.Logger.Warn().Err(err).Str("persona", p.ID).Str("content_id", item.ID).Msg("save failed")
		} else {
			report.Saves++
		}
	}
	return nil
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.Limiter == nil {
		return nil
	}
	return s.Limiter.Wait(ctx)
}
