// Package token parses the access tokens issued by the platform. Tokens are RS256 signed and carry
// the user in the "user" claim.
package token

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const userClaim = "user"

// GenerateAccessToken signs an access token for the given user. This service never issues tokens
// itself, it is used by tests and local tooling.
func GenerateAccessToken(user model.User, key *rsa.PrivateKey, expiration time.Duration) (string, error) {
	now := time.Now()

	token := jwt.New()

	err := token.Set(jwt.IssuedAtKey, now.Unix())
	if err != nil {
		return "", err
	}

	err = token.Set(jwt.ExpirationKey, now.Add(expiration).Unix())
	if err != nil {
		return "", err
	}

	err = token.Set(userClaim, user)
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, key))
	if err != nil {
		return "", err
	}

	return string(signed), nil
}

// ParseRequest validates the bearer token of the request and returns its user.
func ParseRequest(request *http.Request, key jwk.Key) (model.User, error) {
	token, err := jwt.ParseRequest(
		request,
		jwt.WithKey(jwa.RS256, key),
		jwt.WithHeaderKey("Authorization"),
		jwt.WithValidate(true),
	)
	if err != nil {
		return model.User{}, err
	}

	return extractUser(token)
}

func extractUser(token jwt.Token) (model.User, error) {
	userData, ok := token.Get(userClaim)
	if !ok {
		return model.User{}, errors.New("user not found in claims")
	}

	bytes, err := json.Marshal(userData)
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	err = json.Unmarshal(bytes, &user)
	if err != nil {
		return model.User{}, err
	}

	if user.ID == "" {
		return model.User{}, errors.New("user id not found in claims")
	}

	return user, nil
}
