package service

import (
	"maps"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedrec/core"
)

// DefaultMaxViewHistory 是每个用户保留的浏览记录上限。
const DefaultMaxViewHistory = 1000

var (
	ErrUserNotFound = core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound, "service: user not found")
	ErrUserExists   = core.NewDomainError(core.ModuleService, core.ErrorCodeAlreadyExists, "service: user already exists")
	ErrEmailTaken   = core.NewDomainError(core.ModuleService, core.ErrorCodeConflict, "service: email already registered")
	errEmptyUserID  = core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "service: user id is empty")
)

// UserManager 管理用户（虚拟人设）的注册信息、兴趣、浏览历史与收藏。线程安全。
// 读取接口返回副本，调用方修改返回值不会影响内部状态。
type UserManager struct {
	mu       sync.RWMutex
	profiles map[string]*core.UserProfile
	byEmail  map[string]string

	// MaxViewHistory 每个用户保留的浏览记录上限，<= 0 表示不限制
	MaxViewHistory int

	log zerolog.Logger
}

// NewUserManager 创建用户管理器。
func NewUserManager(log zerolog.Logger) *UserManager {
	return &UserManager{
		profiles:       make(map[string]*core.UserProfile),
		byEmail:        make(map[string]string),
		MaxViewHistory: DefaultMaxViewHistory,
		log:            log,
	}
}

// Create 注册用户。
// 用户 ID 已存在时返回已有用户与 ErrUserExists；邮箱已被占用时返回 ErrEmailTaken。
func (m *UserManager) Create(userID, username, email string) (*core.UserProfile, error) {
	if userID == "" {
		return nil, errEmptyUserID
	}
	email = strings.ToLower(strings.TrimSpace(email))

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.profiles[userID]; ok {
		return clone(p), ErrUserExists
	}
	if email != "" {
		if _, ok := m.byEmail[email]; ok {
			m.log.Warn().Str("user_id", userID).Msg("email already registered")
			return nil, ErrEmailTaken
		}
	}

	p := core.NewUserProfile(userID, username, email)
	m.profiles[userID] = p
	if email != "" {
		m.byEmail[email] = userID
	}
	m.log.Info().Str("user_id", userID).Msg("user created")
	return clone(p), nil
}

// Get 获取用户。
func (m *UserManager) Get(userID string) (*core.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return clone(p), nil
}

// GetByEmail 按邮箱获取用户。
func (m *UserManager) GetByEmail(email string) (*core.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrUserNotFound
	}
	return clone(m.profiles[userID]), nil
}

// Exists 判断用户是否已注册。
func (m *UserManager) Exists(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.profiles[userID]
	return ok
}

// List 返回全部用户 ID（无序）。
func (m *UserManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		out = append(out, id)
	}
	return out
}

// SetInterests 整体替换用户兴趣。
func (m *UserManager) SetInterests(userID string, interests []string) error {
	return m.update(userID, func(p *core.UserProfile) { p.SetInterests(interests) })
}

// UpdateInterest 更新单个兴趣权重。
func (m *UserManager) UpdateInterest(userID, interest string, weight float64) error {
	return m.update(userID, func(p *core.UserProfile) { p.UpdateInterest(interest, weight) })
}

// AddInterest 添加单个兴趣。
func (m *UserManager) AddInterest(userID, interest string) error {
	return m.update(userID, func(p *core.UserProfile) { p.AddInterest(interest) })
}

// RemoveInterest 删除单个兴趣。
func (m *UserManager) RemoveInterest(userID, interest string) error {
	return m.update(userID, func(p *core.UserProfile) { p.RemoveInterest(interest) })
}

// AddBlockedKeyword 添加屏蔽关键词。
func (m *UserManager) AddBlockedKeyword(userID, keyword string) error {
	return m.update(userID, func(p *core.UserProfile) { p.AddBlockedKeyword(keyword) })
}

// RemoveBlockedKeyword 删除屏蔽关键词。
func (m *UserManager) RemoveBlockedKeyword(userID, keyword string) error {
	return m.update(userID, func(p *core.UserProfile) { p.RemoveBlockedKeyword(keyword) })
}

// UpdatePreferences 更新偏好设置，只接受 core.AllowedPreferenceKeys 中的项。
func (m *UserManager) UpdatePreferences(userID string, prefs map[string]string) error {
	return m.update(userID, func(p *core.UserProfile) { p.UpdatePreferences(prefs) })
}

// AddView 追加浏览记录。
func (m *UserManager) AddView(userID, contentID string) error {
	return m.update(userID, func(p *core.UserProfile) { p.AddView(contentID, m.MaxViewHistory) })
}

// SavePost 收藏内容。
func (m *UserManager) SavePost(userID, contentID string) error {
	return m.update(userID, func(p *core.UserProfile) { p.SavePost(contentID) })
}

// UnsavePost 取消收藏。
func (m *UserManager) UnsavePost(userID, contentID string) error {
	return m.update(userID, func(p *core.UserProfile) { p.UnsavePost(contentID) })
}

// ViewHistory 返回最近 limit 条浏览记录，limit <= 0 返回全部。
func (m *UserManager) ViewHistory(userID string, limit int) ([]core.ViewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return p.RecentViews(limit), nil
}

// SavedPosts 返回收藏的内容 ID（无序）。
func (m *UserManager) SavedPosts(userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := make([]string, 0, len(p.SavedPosts))
	for id := range p.SavedPosts {
		out = append(out, id)
	}
	return out, nil
}

// Delete 删除用户。
func (m *UserManager) Delete(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.profiles, userID)
	if p.Email != "" {
		delete(m.byEmail, p.Email)
	}
	m.log.Info().Str("user_id", userID).Msg("user deleted")
	return nil
}

func (m *UserManager) update(userID string, fn func(p *core.UserProfile)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return ErrUserNotFound
	}
	fn(p)
	return nil
}

func clone(p *core.UserProfile) *core.UserProfile {
	cp := *p
	cp.Interests = maps.Clone(p.Interests)
	cp.BlockedKeywords = maps.Clone(p.BlockedKeywords)
	cp.Preferences = maps.Clone(p.Preferences)
	cp.SavedPosts = maps.Clone(p.SavedPosts)
	cp.ViewHistory = p.RecentViews(0)
	return &cp
}
