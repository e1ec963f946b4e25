package users

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound は該当するユーザーが存在しないことを表します。
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken はメールアドレスが登録済みであることを表します。
	ErrEmailTaken = errors.New("email already registered")
)

// Store はユーザーをメモリ上に保持します。プロセス終了とともに消えます。
type Store struct {
	mu     sync.RWMutex
	users  []User
	nextID int
}

// NewStore は空の Store を作成します。
func NewStore() *Store {
	return &Store{nextID: 1}
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (s *Store) FindByEmail(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(email); i >= 0 {
		return s.users[i], nil
	}
	return User{}, ErrNotFound
}

// Exists はメールアドレスが登録済みかを返します。
func (s *Store) Exists(email string) bool {
	_, err := s.FindByEmail(email)
	return err == nil
}

// Create は新しいユーザーを追加します。
// 一意性の確認と追加は同じロック内で行うため、同時登録でも重複は発生しません。
func (s *Store) Create(username, email, passwordHash string, role Role) (User, error) {
	if email == "" {
		return User{}, fmt.Errorf("email is required")
	}
	if passwordHash == "" {
		return User{}, fmt.Errorf("password hash is required")
	}
	if role != RoleAdmin && role != RoleUser {
		return User{}, fmt.Errorf("unknown role: %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(email) >= 0 {
		return User{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}

	user := User{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	s.nextID++
	s.users = append(s.users, user)
	return user, nil
}

// ListPublic は登録順に全ユーザーの公開情報を返します。
func (s *Store) ListPublic() []PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]PublicUser, len(s.users))
	for i, u := range s.users {
		list[i] = u.Public()
	}
	return list
}

// Len は登録ユーザー数を返します。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) indexOf(email string) int {
	for i := range s.users {
		if s.users[i].Email == email {
			return i
		}
	}
	return -1
}
