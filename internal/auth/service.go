package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service issues and validates opaque session tokens.
type Service struct {
	store      Store
	sessionTTL time.Duration
}

// NewService creates a session Service backed by the given store.
func NewService(store Store, sessionTTL time.Duration) *Service {
	if sessionTTL == 0 {
		sessionTTL = 12 * time.Hour
	}
	return &Service{
		store:      store,
		sessionTTL: sessionTTL,
	}
}

// TTL returns the lifetime applied to issued sessions.
func (s *Service) TTL() time.Duration {
	return s.sessionTTL
}

// Issue creates a session for the subject and returns the raw session token.
func (s *Service) Issue(ctx context.Context, subject Subject) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	now := time.Now()
	session := Session{
		ID:          uuid.New(),
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Email:       subject.Email,
		Method:      subject.Method,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
	}

	if err := s.store.Save(ctx, session, hashToken(token)); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return token, nil
}

// Validate checks the token and returns the associated session, or nil when
// the token is unknown or expired. Expired records are deleted on read.
func (s *Service) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	tokenHash := hashToken(token)
	session, err := s.store.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.store.DeleteByTokenHash(ctx, tokenHash)
		return nil, nil
	}

	return session, nil
}

// Revoke removes the session associated with the given token.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteByTokenHash(ctx, hashToken(token))
}

// SweepExpired removes expired sessions from the store.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx)
}

// hashToken returns the SHA-256 hash of the token as a hex string.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
