package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"github.com/bryanwahyu/genefit/internal/domain/session"
)

// Google reads the profile out of a Google sign-in ID token. Signature
// checking is opt-in through Verify; otherwise the payload is trusted as is.
type Google struct {
	ClientID string
	Verify   bool
	Logger   *zap.Logger
}

func NewGoogle(clientID string, verify bool, logger *zap.Logger) *Google {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Google{ClientID: clientID, Verify: verify, Logger: logger}
}

func (g *Google) Identify(ctx context.Context, credential string) (session.UserSession, error) {
	if g.Verify {
		payload, err := idtoken.Validate(ctx, credential, g.ClientID)
		if err != nil {
			return session.UserSession{}, fmt.Errorf("%w: %v", session.ErrInvalidCredential, err)
		}
		name, _ := payload.Claims["name"].(string)
		email, _ := payload.Claims["email"].(string)
		picture, _ := payload.Claims["picture"].(string)
		return session.UserSession{Name: name, Email: email, Picture: picture}, nil
	}
	return DecodeUnverified(credential)
}

// Logout has nothing to revoke server side; the browser drops its Google
// session itself.
func (g *Google) Logout(_ context.Context, namespace string) error {
	g.Logger.Debug("identity provider logout", zap.String("owner", namespace))
	return nil
}

// DecodeUnverified extracts name, email and picture from the middle segment
// of a JWT without checking its signature.
func DecodeUnverified(credential string) (session.UserSession, error) {
	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		return session.UserSession{}, fmt.Errorf("%w: token has %d segments", session.ErrInvalidCredential, len(parts))
	}
	raw, err := jwt.NewParser(jwt.WithPaddingAllowed()).DecodeSegment(parts[1])
	if err != nil {
		return session.UserSession{}, fmt.Errorf("%w: %v", session.ErrInvalidCredential, err)
	}
	var claims struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return session.UserSession{}, fmt.Errorf("%w: %v", session.ErrInvalidCredential, err)
	}
	return session.UserSession{Name: claims.Name, Email: claims.Email, Picture: claims.Picture}, nil
}
