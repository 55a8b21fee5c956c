package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/rushteam/feedrec/core"
)

// maxBodyBytes 限制请求体大小。
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type contentRequest struct {
	Items []contentItemRequest `json:"items" validate:"required,min=1,dive"`
}

type contentItemRequest struct {
	ID        string   `json:"id" validate:"required,max=128"`
	Title     string   `json:"title" validate:"max=512"`
	Likes     int      `json:"likes" validate:"gte=0"`
	Comments  int      `json:"comments" validate:"gte=0"`
	Shares    int      `json:"shares" validate:"gte=0"`
	Category  string   `json:"category" validate:"max=32"`
	Sentiment *float64 `json:"sentiment" validate:"omitempty,gte=0,lte=1"`
	PriceBand int      `json:"price_band" validate:"gte=0,lte=3"`
}

func (r contentItemRequest) toItem() *core.ContentItem {
	item := &core.ContentItem{
		ID:        r.ID,
		Title:     r.Title,
		Likes:     r.Likes,
		Comments:  r.Comments,
		Shares:    r.Shares,
		Sentiment: r.Sentiment,
		PriceBand: r.PriceBand,
	}
	if r.Category != "" {
		item.Category = core.ParseCategory(r.Category)
	}
	return item
}

type createUserRequest struct {
	UserID    string   `json:"user_id" validate:"required,max=64"`
	Username  string   `json:"username" validate:"required,max=64"`
	Email     string   `json:"email" validate:"omitempty,email"`
	Interests []string `json:"interests" validate:"omitempty,dive,required"`
}

type interestRequest struct {
	Interest string `json:"interest" validate:"required,max=64"`
}

type blockedKeywordRequest struct {
	Keyword string `json:"keyword" validate:"required,max=64"`
}

type interactionRequest struct {
	ContentID string `json:"content_id" validate:"required,max=128"`
	Kind      string `json:"kind" validate:"required,max=32"`
	// Score 缺省为 1
	Score *float64 `json:"score" validate:"omitempty,gte=0"`
}

func (r interactionRequest) score() float64 {
	if r.Score == nil {
		return 1
	}
	return *r.Score
}

// decodeBody 解析并校验请求体，失败时返回可直接写给客户端的 apiError。
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) *apiError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &apiError{Code: codeBadRequest, Message: "invalid JSON body: " + err.Error()}
	}
	return validateStruct(dst)
}

func validateStruct(v any) *apiError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &apiError{Code: codeValidation, Message: err.Error()}
	}
	fields := make(map[string]any, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return &apiError{Code: codeValidation, Message: strings.Join(msgs, "; "), Details: fields}
}

// queryInt 读取整数查询参数，缺省返回 def。
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// queryFloat 读取有限浮点数查询参数，缺省返回 def；NaN 与 ±Inf 视为非法。
func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number", key)
	}
	return v, nil
}
