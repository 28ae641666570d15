package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/types"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	userIdClaim = "user-id"
	expClaim    = "exp"

	DefaultTokenTTL = time.Hour * 24
)

// Authenticator issues and verifies the session tokens used by the REST API
// and by the websocket join handshake.
type Authenticator struct {
	signingKey []byte
	users      database.UserDirectory
	ttl        time.Duration
}

func NewAuthenticator(signingKey []byte, users database.UserDirectory, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Authenticator{
		signingKey: signingKey,
		users:      users,
		ttl:        ttl,
	}
}

func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

func (a *Authenticator) IssueToken(userId int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: userId,
		expClaim:    time.Now().Add(a.ttl).Unix(),
	})

	return token.SignedString(a.signingKey)
}

// UserIdFromToken validates the signature and expiry of tokenString and
// returns the user id it carries.
func (a *Authenticator) UserIdFromToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.signingKey, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	if !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}

	userId, ok := claims[userIdClaim].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: invalid user id claim", ErrInvalidToken)
	}

	return int(userId), nil
}

// Verify resolves a token to the current state of its user. A token for a
// user that no longer exists is invalid.
func (a *Authenticator) Verify(ctx context.Context, tokenString string) (types.User, error) {
	userId, err := a.UserIdFromToken(tokenString)
	if err != nil {
		return types.User{}, err
	}

	dbUser, err := a.users.GetAccountById(ctx, userId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return types.User{}, fmt.Errorf("%w: unknown user %d", ErrInvalidToken, userId)
		}
		return types.User{}, fmt.Errorf("get account: %w", err)
	}

	return dbUser.ToUser(), nil
}

func HashPassword(passwd string) (string, error) {
	passwdHash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	return string(passwdHash), err
}

func VerifyPassword(passwdHash, passwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(passwd))
	return err == nil
}
