// Package credstore persists the auth token and user profile across process
// restarts, encrypted at rest. It is the Go analogue of the mobile OS secure
// store: a corrupted or unreadable entry is treated as no-session, never as a
// startup failure.
package credstore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/pkg/logging"
)

const (
	keyFile     = "device.key"
	sessionFile = "session.bin"
)

// Session is the persisted credential record. Token and User are stored as
// one sealed blob so they are always set and cleared together.
type Session struct {
	Token string       `json:"token"`
	User  api.AuthUser `json:"user"`
}

// Store is a file-backed encrypted credential store.
type Store struct {
	mu     sync.Mutex
	dir    string
	logger *logging.Logger
}

// New opens (or initializes) the credential store under dir.
func New(dir string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("credstore: create dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// SaveSession seals and persists the token and user atomically. Idempotent.
func (s *Store) SaveSession(ctx context.Context, token string, user api.AuthUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plaintext, err := json.Marshal(Session{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("credstore: marshal session: %w", err)
	}

	aead, err := s.aead()
	if err != nil {
		return fmt.Errorf("credstore: load device key: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("credstore: nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)

	tmp := filepath.Join(s.dir, sessionFile+".tmp")
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("credstore: write session: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, sessionFile)); err != nil {
		return fmt.Errorf("credstore: write session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted session. The second return is false when
// no usable session exists; corrupted entries are cleared as a side effect.
// It never returns an error: a storage failure means no session.
func (s *Store) LoadSession(ctx context.Context) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// ClearSession removes the persisted session. Idempotent.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

// Token implements api.TokenSource. It re-reads the store on every call so a
// cleared session is observed by the next request.
func (s *Store) Token(ctx context.Context) (string, bool) {
	sess, ok := s.LoadSession(ctx)
	if !ok {
		return "", false
	}
	return sess.Token, true
}

func (s *Store) loadLocked() (Session, bool) {
	sealed, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("unreadable session entry, treating as no session", "error", err)
		}
		return Session{}, false
	}

	aead, err := s.aead()
	if err != nil {
		s.logger.Warn("device key unavailable, clearing session", "error", err)
		_ = s.clearLocked()
		return Session{}, false
	}
	if len(sealed) < aead.NonceSize() {
		_ = s.clearLocked()
		return Session{}, false
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		s.logger.Warn("corrupted session entry, clearing", "error", err)
		_ = s.clearLocked()
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(plaintext, &sess); err != nil || sess.Token == "" || sess.User.ID == "" {
		_ = s.clearLocked()
		return Session{}, false
	}
	return sess, true
}

func (s *Store) clearLocked() error {
	err := os.Remove(filepath.Join(s.dir, sessionFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: clear session: %w", err)
	}
	return nil
}

// aead returns the cipher for the device key, creating the key on first use.
func (s *Store) aead() (cipher.AEAD, error) {
	path := filepath.Join(s.dir, keyFile)
	key, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		key = make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, key, 0o600); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("device key has %d bytes, want %d", len(key), chacha20poly1305.KeySize)
	}
	return chacha20poly1305.NewX(key)
}
