package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rushteam/feedrec/core"
)

type userResponse struct {
	UserID          string             `json:"user_id"`
	Username        string             `json:"username"`
	Email           string             `json:"email,omitempty"`
	Interests       map[string]float64 `json:"interests"`
	BlockedKeywords []string           `json:"blocked_keywords"`
	SavedPosts      []string           `json:"saved_posts"`
	ViewCount       int                `json:"view_count"`
	CreatedAt       time.Time          `json:"created_at"`
}

func newUserResponse(p *core.UserProfile) userResponse {
	return userResponse{
		UserID:          p.UserID,
		Username:        p.Username,
		Email:           p.Email,
		Interests:       p.Interests,
		BlockedKeywords: sortedKeys(p.BlockedKeywords),
		SavedPosts:      sortedKeys(p.SavedPosts),
		ViewCount:       len(p.ViewHistory),
		CreatedAt:       p.CreatedAt,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

type scoredResponse struct {
	ID      string            `json:"id"`
	Score   float64           `json:"score"`
	Methods []core.Method     `json:"methods"`
	Content *core.ContentItem `json:"content"`
}

func newScoredResponses(items []*core.ScoredCandidate) []scoredResponse {
	out := make([]scoredResponse, 0, len(items))
	for _, sc := range items {
		out = append(out, scoredResponse{
			ID:      sc.ID(),
			Score:   sc.Score,
			Methods: sc.Methods,
			Content: sc.Content,
		})
	}
	return out
}

// Health GET /healthz
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondData(w, h.log, http.StatusOK, map[string]any{
		"status":   "ok",
		"contents": len(h.svc.Catalog.Items()),
		"users":    len(h.svc.Users.List()),
	})
}

// ListContent GET /api/v1/content
func (h *Handler) ListContent(w http.ResponseWriter, _ *http.Request) {
	respondData(w, h.log, http.StatusOK, h.svc.Catalog.Items())
}

// AddContent POST /api/v1/content
func (h *Handler) AddContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		respondJSON(w, h.log, http.StatusBadRequest, errorEnvelope{Error: apiErr})
		return
	}
	items := make([]*core.ContentItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.toItem())
	}
	if err := h.svc.AddContent(items...); err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, map[string]int{"upserted": len(items)})
}

// CreateUser POST /api/v1/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		respondJSON(w, h.log, http.StatusBadRequest, errorEnvelope{Error: apiErr})
		return
	}
	p, err := h.svc.Users.Create(req.UserID, req.Username, req.Email)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	if len(req.Interests) > 0 {
		if err := h.svc.Users.SetInterests(req.UserID, req.Interests); err != nil {
			respondDomainError(w, h.log, err)
			return
		}
		if p, err = h.svc.Users.Get(req.UserID); err != nil {
			respondDomainError(w, h.log, err)
			return
		}
	}
	respondData(w, h.log, http.StatusCreated, newUserResponse(p))
}

// GetUser GET /api/v1/users/{userID}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Users.Get(chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, newUserResponse(p))
}

// Feed GET /api/v1/users/{userID}/feed?limit=&min_score=
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondError(w, h.log, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	minScore, err := queryFloat(r, "min_score", h.svc.DefaultMinScore())
	if err != nil {
		respondError(w, h.log, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	feed, err := h.svc.Feed(r.Context(), chi.URLParam(r, "userID"), limit, minScore)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, newScoredResponses(feed))
}

// RecordInteraction POST /api/v1/users/{userID}/interactions
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		respondJSON(w, h.log, http.StatusBadRequest, errorEnvelope{Error: apiErr})
		return
	}
	in, err := h.svc.RecordInteraction(r.Context(), chi.URLParam(r, "userID"), req.ContentID, core.InteractionKind(req.Kind), req.score())
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, in)
}

// SavePost POST /api/v1/users/{userID}/saved/{contentID}
func (h *Handler) SavePost(w http.ResponseWriter, r *http.Request) {
	userID, contentID := chi.URLParam(r, "userID"), chi.URLParam(r, "contentID")
	if err := h.svc.SavePost(r.Context(), userID, contentID); err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, map[string]string{"user_id": userID, "content_id": contentID})
}

// Analytics GET /api/v1/users/{userID}/analytics
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Analytics(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, a)
}

// Trending GET /api/v1/trending?limit=
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondError(w, h.log, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	items, err := h.svc.Trending(r.Context(), limit)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, newScoredResponses(items))
}

// Blacklist GET /api/v1/blacklist
func (h *Handler) Blacklist(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Blacklist(r.Context())
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, items)
}

// BlockContent PUT /api/v1/blacklist/{contentID}
func (h *Handler) BlockContent(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	if err := h.svc.BlockContent(r.Context(), contentID); err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, map[string]string{"content_id": contentID})
}

// UnblockContent DELETE /api/v1/blacklist/{contentID}
func (h *Handler) UnblockContent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.UnblockContent(r.Context(), chi.URLParam(r, "contentID")); err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddInterest POST /api/v1/users/{userID}/interests
func (h *Handler) AddInterest(w http.ResponseWriter, r *http.Request) {
	var req interestRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		respondJSON(w, h.log, http.StatusBadRequest, errorEnvelope{Error: apiErr})
		return
	}
	h.updateUser(w, chi.URLParam(r, "userID"), func(userID string) error {
		return h.svc.Users.AddInterest(userID, req.Interest)
	})
}

// RemoveInterest DELETE /api/v1/users/{userID}/interests/{interest}
func (h *Handler) RemoveInterest(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, chi.URLParam(r, "userID"), func(userID string) error {
		return h.svc.Users.RemoveInterest(userID, chi.URLParam(r, "interest"))
	})
}

// AddBlockedKeyword POST /api/v1/users/{userID}/blocked_keywords
func (h *Handler) AddBlockedKeyword(w http.ResponseWriter, r *http.Request) {
	var req blockedKeywordRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		respondJSON(w, h.log, http.StatusBadRequest, errorEnvelope{Error: apiErr})
		return
	}
	h.updateUser(w, chi.URLParam(r, "userID"), func(userID string) error {
		return h.svc.Users.AddBlockedKeyword(userID, req.Keyword)
	})
}

// RemoveBlockedKeyword DELETE /api/v1/users/{userID}/blocked_keywords/{keyword}
func (h *Handler) RemoveBlockedKeyword(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, chi.URLParam(r, "userID"), func(userID string) error {
		return h.svc.Users.RemoveBlockedKeyword(userID, chi.URLParam(r, "keyword"))
	})
}

// updateUser 执行修改并返回修改后的用户。
func (h *Handler) updateUser(w http.ResponseWriter, userID string, fn func(userID string) error) {
	if err := fn(userID); err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	p, err := h.svc.Users.Get(userID)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, newUserResponse(p))
}
