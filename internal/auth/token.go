package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"tasker/internal/model"
)

// ErrMalformedToken is returned for any token whose payload cannot yield a subject.
var ErrMalformedToken = errors.New("malformed session token")

var parser = jwt.NewParser()

// DecodeUser reads the identity out of a session token without verifying its
// signature. Only the server can verify it; the client just needs sub.
func DecodeUser(token string) (model.User, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return model.User{}, fmt.Errorf("%w: want three segments", ErrMalformedToken)
	}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	id, err := subject(claims["sub"])
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return model.User{ID: id}, nil
}

// subject accepts sub as a string or a number.
func subject(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", errors.New("sub is empty")
		}
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", errors.New("sub is missing")
	default:
		return "", fmt.Errorf("sub has unsupported type %T", raw)
	}
}
