package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token shape the upstream auth service issues. The seller's
// organisation id and SKU prefix code travel inside the token so this
// service never needs the auth database.
type Claims struct {
	UserID  string `json:"user_id"`
	OrgID   string `json:"org_id"`
	OrgCode string `json:"org_code"`
	jwt.RegisteredClaims
}

// ParseToken verifies the signature and returns the embedded caller.
func ParseToken(tokenString string, secret []byte) (*Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.OrgID == "" {
		return nil, errors.New("token missing organisation")
	}

	return &Caller{
		UserID:  claims.UserID,
		OrgID:   claims.OrgID,
		OrgCode: claims.OrgCode,
	}, nil
}
