package service

import (
	"context"
	"time"

	"github.com/rushteam/feedrec/core"
)

var (
	ErrBlacklistDisabled = core.NewDomainError(core.ModuleService, core.ErrorCodeNotSupported, "service: content blacklist is not configured")
	errEmptyContentID    = core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "service: content id is empty")
)

// BlockedContent 是黑名单中的一条内容。
type BlockedContent struct {
	ContentID string    `json:"content_id"`
	BlockedAt time.Time `json:"blocked_at"`
}

func (s *FeedService) blacklist() error {
	if s.Store == nil || s.BlacklistKey == "" {
		return ErrBlacklistDisabled
	}
	return nil
}

// BlockContent 把内容加入黑名单，分数记录加入时间。Feed 的 filter.blacklist 阶段读取同一个有序集合。
func (s *FeedService) BlockContent(ctx context.Context, contentID string) error {
	if err := s.blacklist(); err != nil {
		return err
	}
	if contentID == "" {
		return errEmptyContentID
	}
	if err := s.Store.ZAdd(ctx, s.BlacklistKey, float64(time.Now().Unix()), contentID); err != nil {
		return err
	}
	s.Logger.Info().Str("content_id", contentID).Msg("content blocked")
	return nil
}

// UnblockContent 把内容移出黑名单，内容不在黑名单中时不报错。
func (s *FeedService) UnblockContent(ctx context.Context, contentID string) error {
	if err := s.blacklist(); err != nil {
		return err
	}
	if contentID == "" {
		return errEmptyContentID
	}
	if err := s.Store.ZRem(ctx, s.BlacklistKey, contentID); err != nil {
		return err
	}
	s.Logger.Info().Str("content_id", contentID).Msg("content unblocked")
	return nil
}

// Blacklist 按加入时间倒序返回黑名单。
func (s *FeedService) Blacklist(ctx context.Context) ([]BlockedContent, error) {
	if err := s.blacklist(); err != nil {
		return nil, err
	}
	members, err := s.Store.ZRevRangeWithScores(ctx, s.BlacklistKey, 0, -1)
	if err != nil {
		return nil, err
	}
	out := make([]BlockedContent, 0, len(members))
	for _, m := range members {
		out = append(out, BlockedContent{ContentID: m.Member, BlockedAt: time.Unix(int64(m.Score), 0).UTC()})
	}
	return out, nil
}
