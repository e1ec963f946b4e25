// Package users はメモリ上の認証情報ストアを提供します。
package users

import "encoding/gob"

// Role はユーザーの権限を表します。
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User は登録済みアカウントです。作成後に変更されることはありません。
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         Role
}

// PublicUser はセッションやビューに渡してよい User の射影です（パスワードハッシュを含まない）。
type PublicUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Public は User から PublicUser を作成します。
func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// IsAdmin は管理者かどうかを返します。
func (p PublicUser) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func init() {
	// memstore はセッション値を gob でコピーして保持する
	gob.Register(PublicUser{})
}
