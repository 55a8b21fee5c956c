package core

import (
	"strings"
	"time"
)

// UserProfile 是用户（虚拟人设）的账户画像。
//
// 它与打分用的画像向量不同：画像向量每次请求由交互账本实时计算，
// UserProfile 只保存注册信息、兴趣、浏览历史与收藏，用于服务层与统计。
type UserProfile struct {
	UserID   string
	Username string
	Email    string

	// 兴趣画像：key 为品类或标签，value 为权重 (0-1)
	Interests map[string]float64

	// 屏蔽关键词（小写），标题命中的内容不会出现在 Feed 中
	BlockedKeywords map[string]struct{}

	// 偏好设置（语言、通知、主题等）
	Preferences map[string]string

	// 浏览历史（按时间追加）
	ViewHistory []ViewRecord

	// 收藏的内容 ID
	SavedPosts map[string]struct{}

	CreatedAt  time.Time
	UpdateTime time.Time
}

// ViewRecord 是一次浏览记录。
type ViewRecord struct {
	ContentID string
	ViewedAt  time.Time
}

// AllowedPreferenceKeys 是允许写入的偏好项。
var AllowedPreferenceKeys = []string{"language", "notification", "privacy", "theme", "recommendation_level"}

// NewUserProfile 创建一个新的用户画像。
func NewUserProfile(userID, username, email string) *UserProfile {
	now := time.Now()
	return &UserProfile{
		UserID:          userID,
		Username:        username,
		Email:           email,
		Interests:       make(map[string]float64),
		BlockedKeywords: make(map[string]struct{}),
		Preferences:     make(map[string]string),
		ViewHistory:     make([]ViewRecord, 0),
		SavedPosts:      make(map[string]struct{}),
		CreatedAt:       now,
		UpdateTime:      now,
	}
}

// UpdateInterest 更新单个兴趣权重，key 统一小写。
func (p *UserProfile) UpdateInterest(interest string, weight float64) {
	if p.Interests == nil {
		p.Interests = make(map[string]float64)
	}
	p.Interests[strings.ToLower(interest)] = weight
	p.UpdateTime = time.Now()
}

// SetInterests 整体替换兴趣，每个兴趣权重为 1。
func (p *UserProfile) SetInterests(interests []string) {
	p.Interests = make(map[string]float64, len(interests))
	for _, in := range interests {
		p.Interests[strings.ToLower(in)] = 1
	}
	p.UpdateTime = time.Now()
}

// AddInterest 添加兴趣，权重为 1；已有的兴趣保留原权重。
func (p *UserProfile) AddInterest(interest string) {
	key := normalizeTerm(interest)
	if key == "" {
		return
	}
	if p.Interests == nil {
		p.Interests = make(map[string]float64)
	}
	if _, ok := p.Interests[key]; !ok {
		p.Interests[key] = 1
	}
	p.UpdateTime = time.Now()
}

// RemoveInterest 删除兴趣，不存在时忽略。
func (p *UserProfile) RemoveInterest(interest string) {
	delete(p.Interests, normalizeTerm(interest))
	p.UpdateTime = time.Now()
}

// AddBlockedKeyword 添加屏蔽关键词，空白关键词忽略。
func (p *UserProfile) AddBlockedKeyword(keyword string) {
	key := normalizeTerm(keyword)
	if key == "" {
		return
	}
	if p.BlockedKeywords == nil {
		p.BlockedKeywords = make(map[string]struct{})
	}
	p.BlockedKeywords[key] = struct{}{}
	p.UpdateTime = time.Now()
}

// RemoveBlockedKeyword 删除屏蔽关键词。
func (p *UserProfile) RemoveBlockedKeyword(keyword string) {
	delete(p.BlockedKeywords, normalizeTerm(keyword))
	p.UpdateTime = time.Now()
}

// Blocks 判断文本是否包含任一屏蔽关键词（不区分大小写）。
func (p *UserProfile) Blocks(text string) bool {
	if len(p.BlockedKeywords) == 0 || text == "" {
		return false
	}
	text = strings.ToLower(text)
	for kw := range p.BlockedKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// HasInterest 检查用户是否有某个兴趣。
func (p *UserProfile) HasInterest(interest string, threshold float64) bool {
	weight, ok := p.Interests[strings.ToLower(interest)]
	return ok && weight >= threshold
}

// UpdatePreferences 只写入 AllowedPreferenceKeys 中的偏好项。
func (p *UserProfile) UpdatePreferences(prefs map[string]string) {
	if p.Preferences == nil {
		p.Preferences = make(map[string]string)
	}
	for _, key := range AllowedPreferenceKeys {
		if v, ok := prefs[key]; ok {
			p.Preferences[key] = v
		}
	}
	p.UpdateTime = time.Now()
}

// AddView 追加浏览记录；maxSize > 0 时只保留最近 maxSize 条。
func (p *UserProfile) AddView(contentID string, maxSize int) {
	p.ViewHistory = append(p.ViewHistory, ViewRecord{ContentID: contentID, ViewedAt: time.Now()})
	if maxSize > 0 && len(p.ViewHistory) > maxSize {
		p.ViewHistory = p.ViewHistory[len(p.ViewHistory)-maxSize:]
	}
	p.UpdateTime = time.Now()
}

// RecentViews 返回最近 limit 条浏览记录；limit <= 0 返回全部。
func (p *UserProfile) RecentViews(limit int) []ViewRecord {
	views := p.ViewHistory
	if limit > 0 && len(views) > limit {
		views = views[len(views)-limit:]
	}
	out := make([]ViewRecord, len(views))
	copy(out, views)
	return out
}

// SavePost 收藏内容。
func (p *UserProfile) SavePost(contentID string) {
	if p.SavedPosts == nil {
		p.SavedPosts = make(map[string]struct{})
	}
	p.SavedPosts[contentID] = struct{}{}
	p.UpdateTime = time.Now()
}

// UnsavePost 取消收藏。
func (p *UserProfile) UnsavePost(contentID string) {
	delete(p.SavedPosts, contentID)
	p.UpdateTime = time.Now()
}
