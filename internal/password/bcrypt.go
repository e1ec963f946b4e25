// Package password はパスワードのハッシュ化と検証を提供します。
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrTooLong はパスワードが bcrypt の上限 72 バイトを超えていることを表します。
var ErrTooLong = errors.New("password exceeds 72 bytes")

// Hasher はパスワードのハッシュ化と検証を行います。
type Hasher interface {
	Hash(plain string) (string, error)
	// Verify は一致しない場合 (false, nil) を返します。
	// エラーはハッシュ自体が壊れている等の内部エラーに限られます。
	Verify(plain, hashed string) (bool, error)
}

// Bcrypt は bcrypt による Hasher 実装です。
type Bcrypt struct {
	cost int
}

// NewBcrypt は指定コストの Bcrypt を作成します。
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost out of range: %d", cost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash はソルト付きハッシュを返します。同じ入力でも呼び出しごとに結果は異なります。
func (b *Bcrypt) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify は hashed に埋め込まれたソルトで plain を検証します。
func (b *Bcrypt) Verify(plain, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
}

// Cost はハッシュ化に使うコストを返します。
func (b *Bcrypt) Cost() int {
	return b.cost
}
