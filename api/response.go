// Package api 把 FeedService 暴露为 JSON HTTP 接口。
package api

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/feedrec/core"
)

// 接口层自己的错误码，领域错误沿用 DomainError.Code。
const (
	codeValidation = "VALIDATION_ERROR"
	codeBadRequest = "BAD_REQUEST"
	codeInternal   = core.ErrorCodeInternalError
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, log zerolog.Logger, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Debug().Err(err).Msg("write response failed")
	}
}

func respondData(w http.ResponseWriter, log zerolog.Logger, status int, data any) {
	respondJSON(w, log, status, dataEnvelope{Data: data})
}

func respondError(w http.ResponseWriter, log zerolog.Logger, status int, code, message string) {
	respondJSON(w, log, status, errorEnvelope{Error: &apiError{Code: code, Message: message}})
}

// respondDomainError 把领域错误映射为 HTTP 状态码，非领域错误按 500 处理且不回显细节。
func respondDomainError(w http.ResponseWriter, log zerolog.Logger, err error) {
	de := core.GetDomainError(err)
	if de == nil {
		log.Error().Err(err).Msg("request failed")
		respondError(w, log, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}
	respondError(w, log, statusFor(de.Code), de.Code, de.Message)
}

func statusFor(code string) int {
	switch code {
	case core.ErrorCodeNotFound:
		return http.StatusNotFound
	case core.ErrorCodeInvalidInput:
		return http.StatusBadRequest
	case core.ErrorCodeAlreadyExists, core.ErrorCodeConflict:
		return http.StatusConflict
	case core.ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case core.ErrorCodeNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
