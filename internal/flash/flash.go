// Package flash は一度だけ表示される一時メッセージの保存を提供する。
// メッセージは失敗時に書き込まれ、直後のリクエストで1回だけ読み出されて消える。
package flash

import (
	"context"
	"sync"
	"time"
)

// Store は一時メッセージの保存先。
type Store interface {
	// Set はkeyにメッセージを保存する。既存のメッセージは上書きされる。
	Set(ctx context.Context, key, msg string) error
	// Pop はkeyのメッセージを取り出して削除する。存在しない場合はokがfalseになる。
	Pop(ctx context.Context, key string) (msg string, ok bool, err error)
}

type memoryEntry struct {
	msg       string
	expiresAt time.Time
}

// MemoryStore はプロセス内のマップに保存するStore。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set はkeyにメッセージを保存する。期限切れのエントリはこのとき掃除する。
func (s *MemoryStore) Set(ctx context.Context, key, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memoryEntry{msg: msg, expiresAt: now.Add(s.ttl)}
	return nil
}

// Pop はkeyのメッセージを取り出して削除する。
func (s *MemoryStore) Pop(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, key)
	if s.now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.msg, true, nil
}

// Session はブラウザ単位のフラッシュ領域。リクエストコンテキストで受け渡す。
type Session struct {
	id    string
	store Store
}

// NewSession はSessionを生成する。idはブラウザを識別する値。
func NewSession(id string, store Store) *Session {
	return &Session{id: id, store: store}
}

// ID はセッションの識別子を返す。
func (s *Session) ID() string {
	return s.id
}

// Set はメッセージを保存する。
func (s *Session) Set(ctx context.Context, msg string) error {
	return s.store.Set(ctx, s.key(), msg)
}

// Pop はメッセージを1回だけ取り出す。
func (s *Session) Pop(ctx context.Context) (string, bool, error) {
	return s.store.Pop(ctx, s.key())
}

func (s *Session) key() string {
	return "flash:" + s.id
}

type contextKey struct{}

// NewContext はSessionを格納したコンテキストを返す。
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext はコンテキストからSessionを取得する。
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
