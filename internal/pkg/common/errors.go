package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 支援 errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// WithCause 複製預定義錯誤並附上原始錯誤
func (e *CustomError) WithCause(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// AsCustomError 從錯誤鏈中取出 CustomError，取不出時包成 UPSTREAM_FAILURE
func AsCustomError(err error) *CustomError {
	if err == nil {
		return nil
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrUpstreamFailure.WithCause(err)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// 查詢管線錯誤（皆可恢復，由分派器轉成可顯示的回覆）
	ErrCodeExtractionEmpty = "EXTRACTION_EMPTY" // 未擷取到食材或關鍵字
	ErrCodeTargetNotFound  = "TARGET_NOT_FOUND" // 語料庫中找不到指定菜名
	ErrCodeMissingContext  = "MISSING_CONTEXT"  // scale/similar 缺少可解析的菜名或倍數
	ErrCodeUpstreamTimeout = "UPSTREAM_TIMEOUT" // 補全或嵌入服務超時
	ErrCodeUpstreamFailure = "UPSTREAM_FAILURE" // 補全或嵌入服務失敗
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 查詢管線錯誤
	ErrExtractionEmpty = NewError(ErrCodeExtractionEmpty, "未能從輸入中辨識出任何食材", http.StatusOK, nil)
	ErrTargetNotFound  = NewError(ErrCodeTargetNotFound, "找不到指定的食譜", http.StatusOK, nil)
	ErrMissingContext  = NewError(ErrCodeMissingContext, "無法判斷要處理的食譜或倍數", http.StatusOK, nil)
	ErrUpstreamTimeout = NewError(ErrCodeUpstreamTimeout, "外部服務回應超時", http.StatusOK, nil)
	ErrUpstreamFailure = NewError(ErrCodeUpstreamFailure, "外部服務暫時無法使用", http.StatusOK, nil)

	// 業務錯誤
	ErrCacheFull     = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled = NewError("CACHE_DISABLED", "緩存已禁用", http.StatusServiceUnavailable, nil)
)
