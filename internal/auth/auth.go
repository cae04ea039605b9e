// Package auth turns bearer tokens into identities.
package auth

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/dukerupert/pantry/internal/domain"
	"google.golang.org/api/option"
)

// RoleClaim is the custom claim carrying a user's role.
const RoleClaim = "role"

var (
	ErrMissingToken = domain.Unauthorized("", "Sign in to continue")
	ErrInvalidToken = domain.Unauthorized("", "Your session has expired. Sign in again.")
)

// Verifier resolves a bearer token to the signed-in identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// idTokenVerifier is the part of the Firebase Auth client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client idTokenVerifier
	admins map[string]bool
}

// FirebaseConfig configures the Firebase app.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	// AdminUIDs are treated as admins when their token has no role claim.
	AdminUIDs []string
}

// NewFirebaseVerifier initializes Firebase Auth for the project.
func NewFirebaseVerifier(ctx context.Context, cfg FirebaseConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	return newFirebaseVerifier(client, cfg.AdminUIDs), nil
}

func newFirebaseVerifier(client idTokenVerifier, adminUIDs []string) *FirebaseVerifier {
	admins := make(map[string]bool, len(adminUIDs))
	for _, uid := range adminUIDs {
		if uid = strings.TrimSpace(uid); uid != "" {
			admins[uid] = true
		}
	}
	return &FirebaseVerifier{client: client, admins: admins}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	const op = "auth.Verify"

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.WithOp(ErrMissingToken, op)
	}

	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		invalid := domain.WithOp(ErrInvalidToken, op).(*domain.Error)
		invalid.Err = err
		return nil, invalid
	}

	id := &domain.Identity{
		UID:         t.UID,
		Email:       claimString(t.Claims, "email"),
		DisplayName: claimString(t.Claims, "name"),
		Role:        domain.Role(claimString(t.Claims, RoleClaim)),
	}
	if id.Role == "" && v.admins[id.UID] {
		id.Role = domain.RoleAdmin
	}
	if id.Role == "" {
		id.Role = domain.RoleCustomer
	}
	return id, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}

// DevVerifier accepts tokens of the form "uid" or "uid:admin". It exists for
// local development against the memory backend and must never be used in
// production.
type DevVerifier struct{}

func (DevVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.WithOp(ErrMissingToken, "auth.Verify")
	}

	uid, role, _ := strings.Cut(token, ":")
	id := &domain.Identity{UID: uid, Email: uid + "@example.test", DisplayName: uid, Role: domain.RoleCustomer}
	if role == string(domain.RoleAdmin) {
		id.Role = domain.RoleAdmin
	}
	return id, nil
}
