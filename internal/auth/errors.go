package auth

import "errors"

// Error はログイン処理の失敗を表します。Message は利用者にそのまま表示できる文言です。
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is は Code が一致すれば同じエラーとみなします。
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	// ErrMissingCredentials はユーザー名またはパスワードが未入力の場合のエラーです。
	ErrMissingCredentials = &Error{Code: "MISSING_CREDENTIALS", Message: "Vui lòng nhập đầy đủ thông tin"}
	// ErrInvalidCredentials は資格情報が一致しない場合のエラーです。どちらが違うかは伝えません。
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Message: "Tên đăng nhập hoặc mật khẩu không đúng"}
	// ErrSessionIssuance はセッションCookieの発行に失敗した場合のエラーです。
	ErrSessionIssuance = &Error{Code: "SESSION_SAVE_FAILED", Message: "Có lỗi xảy ra trong quá trình đăng nhập"}
	// ErrTooManyAttempts はログイン失敗が続きロック中の場合のエラーです。
	ErrTooManyAttempts = &Error{Code: "TOO_MANY_ATTEMPTS", Message: "Bạn đã thử đăng nhập quá nhiều lần. Vui lòng thử lại sau."}
	// ErrNotConfigured はサーバー側に資格情報が設定されていない場合のエラーです。
	ErrNotConfigured = &Error{Code: "SERVER_MISCONFIGURATION", Message: "Đã có lỗi xảy ra. Vui lòng thử lại sau."}
)

func wrapError(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Err: cause}
}

// messageFor は利用者向けの文言を取り出します。
func messageFor(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return ErrSessionIssuance.Message
}
