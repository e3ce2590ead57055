package middleware

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

// TokenIssuer identifies the service that issues all access tokens.
const TokenIssuer = "SOS Condo"

// ValidateToken checks the token's signature and standard claims and
// returns its claims. Any deviation returns a descriptive error.
func ValidateToken(tokenString string, publicKey *rsa.PublicKey) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return publicKey, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ActorFromClaims maps sub/role/name onto an Actor.
func ActorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return models.Actor{}, errors.New("missing subject")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return models.Actor{}, errors.New("subject is not a uuid")
	}
	roleStr, _ := claims["role"].(string)
	role := models.RoleType(roleStr)
	if !role.Valid() {
		return models.Actor{}, errors.New("missing or unknown role claim")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	return models.Actor{ID: id, Role: role, DisplayName: name, Email: email}, nil
}

// IssueToken signs an RS256 access token for actor. Used by account
// bootstrap and tests; the login flow lives with the identity provider.
func IssueToken(privateKey *rsa.PrivateKey, actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   actor.ID.String(),
		"role":  string(actor.Role),
		"name":  actor.DisplayName,
		"email": actor.Email,
		"iss":   TokenIssuer,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
}
