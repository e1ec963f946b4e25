package users

import (
	"errors"
	"fmt"
)

// SeedAccount は起動時に登録するアカウントです。
// PasswordHash が空の場合は Password をハッシュ化して登録します。
type SeedAccount struct {
	Username     string
	Email        string
	Password     string
	PasswordHash string
	Role         Role
}

// PasswordHasher は平文パスワードをハッシュ化できる型が実装します。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// DemoAccounts はデモ用の管理者と一般ユーザーです。
var DemoAccounts = []SeedAccount{
	{Username: "AdminUser", Email: "admin@example.com", Password: "admin123", Role: RoleAdmin},
	{Username: "RegularUser", Email: "user@example.com", Password: "user123", Role: RoleUser},
}

// Seed はアカウントを順に登録します。登録済みのメールアドレスはスキップします。
func Seed(s *Store, hasher PasswordHasher, accounts ...SeedAccount) error {
	for _, acc := range accounts {
		hash := acc.PasswordHash
		if hash == "" {
			if hasher == nil {
				return fmt.Errorf("seed %s: hasher is nil", acc.Email)
			}
			var err error
			hash, err = hasher.Hash(acc.Password)
			if err != nil {
				return fmt.Errorf("seed %s: %w", acc.Email, err)
			}
		}
		if _, err := s.Create(acc.Username, acc.Email, hash, acc.Role); err != nil {
			if errors.Is(err, ErrEmailTaken) {
				continue
			}
			return fmt.Errorf("seed %s: %w", acc.Email, err)
		}
	}
	return nil
}
