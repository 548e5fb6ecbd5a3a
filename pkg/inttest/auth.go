package inttest

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dhis2-sre/im-atlas/internal/middleware"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/dhis2-sre/im-atlas/pkg/token"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/require"
)

// Authentication signs access tokens accepted by its middlewares.
type Authentication struct {
	Authentication middleware.AuthenticationMiddleware
	Authorization  middleware.AuthorizationMiddleware
	privateKey     *rsa.PrivateKey
}

// SetupAuthentication creates a key pair and the middlewares verifying tokens signed with it.
func SetupAuthentication(t *testing.T) *Authentication {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate RSA key")
	publicKey, err := jwk.FromRaw(&privateKey.PublicKey)
	require.NoError(t, err, "failed to create JWK")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Authentication{
		Authentication: middleware.NewAuthentication(logger, publicKey),
		Authorization:  middleware.NewAuthorization(logger),
		privateKey:     privateKey,
	}
}

// AccessToken returns a valid access token for the given user.
func (a *Authentication) AccessToken(t *testing.T, user model.User) string {
	t.Helper()

	signed, err := token.GenerateAccessToken(user, a.privateKey, time.Hour)
	require.NoError(t, err, "failed to generate access token")
	return signed
}
