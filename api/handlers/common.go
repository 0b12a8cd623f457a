package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vibecaas/nanoswarm/types"
	"go.uber.org/zap"
)

// =============================================================================
// 📦 通用响应结构
// =============================================================================

// Response 统一 API 响应结构
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorInfo 错误信息结构
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// =============================================================================
// 🎯 响应辅助函数
// =============================================================================

// WriteJSON 写入 JSON 响应
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	// 编码失败时响应头已写出，只能放弃
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess 写入成功响应
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// WriteAccepted 写入 202 响应（异步提交）
func WriteAccepted(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusAccepted, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// WriteError 写入错误响应。优先用 *types.Error 携带的状态码，
// 其余错误按错误码映射。
func WriteError(w http.ResponseWriter, err error, logger *zap.Logger) {
	code := types.GetErrorCode(err)
	status := mapErrorCodeToHTTPStatus(code)
	message := err.Error()

	var retryable bool
	if terr, ok := err.(*types.Error); ok {
		if terr.HTTPStatus != 0 {
			status = terr.HTTPStatus
		}
		message = terr.Message
		retryable = terr.Retryable
	}

	if logger != nil {
		logger.Error("API error",
			zap.String("code", string(code)),
			zap.String("message", message),
			zap.Int("status", status),
		)
	}

	WriteJSON(w, status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      string(code),
			Message:   message,
			Retryable: retryable,
		},
		Timestamp: time.Now(),
	})
}

// WriteErrorMessage 写入简单错误消息
func WriteErrorMessage(w http.ResponseWriter, status int, code types.ErrorCode, message string, logger *zap.Logger) {
	WriteError(w, types.NewError(code, message).WithHTTPStatus(status), logger)
}

// =============================================================================
// 🔄 错误码到 HTTP 状态码映射
// =============================================================================

func mapErrorCodeToHTTPStatus(code types.ErrorCode) int {
	switch code {
	// 4xx 客户端错误
	case types.ErrInvalidRequest:
		return http.StatusBadRequest
	case types.ErrUnknownTeam, types.ErrNotFound:
		return http.StatusNotFound

	// 5xx 服务端与上游错误
	case types.ErrTimeout:
		return http.StatusGatewayTimeout
	case types.ErrBackendUnavailable, types.ErrMalformedResponse:
		return http.StatusBadGateway
	case types.ErrOrchestrationFault, types.ErrToolExecution, types.ErrToolNotPermitted:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
