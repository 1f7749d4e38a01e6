package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Login methods recorded on a session.
const (
	MethodSophia = "sophia"
	MethodGoogle = "google"
)

// Subject is the identity a session is issued for.
type Subject struct {
	ID     string
	Name   string
	Email  string
	Method string
}

// Session represents an authenticated browser session. JSON tags cover the
// redis store, which serializes the record.
type Session struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   string    `json:"subjectId"`
	SubjectName string    `json:"subjectName"`
	Email       string    `json:"email,omitempty"`
	Method      string    `json:"method"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// GoogleClaims contains the relevant claims from a Google ID token.
type GoogleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Store defines session persistence keyed by the SHA-256 hash of the opaque
// session token. Raw tokens never reach a store.
type Store interface {
	Save(ctx context.Context, session Session, tokenHash string) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) (int, error)
}
