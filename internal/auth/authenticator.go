// Package auth は単一の資格情報によるログインゲートと、Cookieセッションの管理を提供します。
package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/todo-gate/internal/config"
)

// CredentialSource は照合に使う資格情報を提供します。ログイン試行ごとに呼び出されます。
type CredentialSource interface {
	Credentials() (config.CredentialsConfig, error)
}

// Authenticator は入力された資格情報を設定値と照合します。状態は持ちません。
type Authenticator struct {
	source CredentialSource
}

// NewAuthenticator は Authenticator を作成します。
func NewAuthenticator(source CredentialSource) *Authenticator {
	return &Authenticator{source: source}
}

// Authenticate は username と password が設定値と一致するか検証します。
// どちらかが空の場合は設定を参照せずに ErrMissingCredentials を返します。
func (a *Authenticator) Authenticate(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	creds, err := a.source.Credentials()
	if err != nil {
		return wrapError(ErrNotConfigured, err)
	}

	// ユーザー名とパスワードは両方とも必ず評価する
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(creds.Username)) == 1
	passOK := verifyPassword(creds, password)
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

func verifyPassword(creds config.CredentialsConfig, password string) bool {
	if creds.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(creds.Password)) == 1
}
