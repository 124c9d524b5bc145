package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidID      = "INVALID_ID"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInvalidDate    = "INVALID_DATE"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// NewInvalidIDError はパスパラメータのIDが整数でない場合のエラーを生成する。
func NewInvalidIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("invalid id: %q is not an integer", raw),
		Category: "validation",
		Action:   "Specify the record id as an integer.",
	}
}

// NewInvalidRequestError はリクエストボディの解析に失敗した場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "failed to parse the request body.",
		Category: "validation",
		Action:   "Send a valid JSON object.",
	}
}

// NewInvalidDateError は日付フィールドが解析できない場合のエラーを生成する。
func NewInvalidDateError(field, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("%s has an unrecognised date format: %q", field, value),
		Category: "validation",
		Action:   "Use yyyy-MM-dd or yyyy/MM/dd (optionally followed by HH:mm:ss).",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "an internal error occurred.",
		Category: "system",
		Action:   "Please retry after a while.",
	}
}

// ValidationError は業務ルール違反を表す。
// 最初に失敗したルールのメッセージのみを保持する。
type ValidationError struct {
	Rule    string // メトリクス用のルール識別子
	Message string // 画面にそのまま表示するメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError はValidationErrorを生成する。
func NewValidationError(rule, message string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message}
}
