// Package auth issues and checks the signed tokens that identify approvers.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer   = "farm-planner"
	audience = "final-plan-approval"
)

// DefaultApprover signs decisions when no approver secret is configured.
const DefaultApprover = "admin"

var (
	// ErrTokenRequired is returned when a secret is configured but no token was given.
	ErrTokenRequired = errors.New("an approver token is required")
	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("invalid approver token")
)

// Approvers signs and verifies approver tokens with an HS256 secret.
type Approvers struct {
	secret []byte
	now    func() time.Time
}

// NewApprovers creates an Approvers for secret. An empty secret disables
// token checks.
func NewApprovers(secret string) *Approvers {
	return &Approvers{secret: []byte(secret), now: time.Now}
}

// Enabled reports whether tokens are required.
func (a *Approvers) Enabled() bool {
	return len(a.secret) > 0
}

// Issue creates a token naming approver, valid for ttl.
func (a *Approvers) Issue(approver string, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", errors.New("approver secret is not configured")
	}
	approver = strings.TrimSpace(approver)
	if approver == "" {
		return "", errors.New("approver name is required")
	}
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   approver,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign approver token: %w", err)
	}
	return signed, nil
}

// Resolve returns the approver identity for a decision. With tokens enabled
// the identity is the verified token subject; otherwise it is fallback, or
// DefaultApprover when fallback is blank.
func (a *Approvers) Resolve(token, fallback string) (string, error) {
	if !a.Enabled() {
		if name := strings.TrimSpace(fallback); name != "" {
			return name, nil
		}
		return DefaultApprover, nil
	}
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", ErrTokenRequired
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
