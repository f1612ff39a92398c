package session

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims mirrors the access tokens the backend issues. The user identifier
// arrives either as user_id or as the registered subject, and either field
// may hold a string or a number depending on which backend version minted it.
type Claims struct {
	UserID any    `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// userIDFromToken extracts the numeric user ID from a backend access token.
// The token is decoded without signature verification: the secret lives on
// the server and the ID is only used to key collection requests, never to
// grant access. A missing or non-numeric ID returns ErrInvalidToken so the
// caller can stay in anonymous mode.
func userIDFromToken(tokenString string) (int64, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return 0, ErrInvalidToken
	}

	if id, ok := coerceUserID(claims.UserID); ok {
		return id, nil
	}
	if id, ok := coerceUserID(claims.Subject); ok {
		return id, nil
	}
	return 0, ErrInvalidToken
}

// coerceUserID accepts the string and numeric forms a user ID shows up in.
func coerceUserID(v any) (int64, bool) {
	switch id := v.(type) {
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	case float64:
		n := int64(id)
		if float64(n) != id || n <= 0 {
			return 0, false
		}
		return n, true
	case json.Number:
		n, err := id.Int64()
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
