// file: internals/features/users/auth/service/token_service.go
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"athletiq_backend/internals/configs"
	usermodel "athletiq_backend/internals/features/users/user/model"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// IssueAccessToken builds the short-lived JWT the API consumes.
func IssueAccessToken(u *usermodel.UserModel) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   u.ID.String(),
		"user_name": u.UserName,
		"email":     u.Email,
		"role":      u.Role,
		"iat":       now.Unix(),
		"exp":       now.Add(AccessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.JWTSecret))
}

// IssueRefreshToken builds the long-lived refresh JWT, signed with a
// separate secret so access and refresh tokens are not interchangeable.
func IssueRefreshToken(u *usermodel.UserModel) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(RefreshTokenTTL)
	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"typ":     "refresh",
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(configs.JWTRefreshSecret))
	return signed, exp, err
}

// ParseRefreshToken validates a refresh JWT and returns its user id claim.
func ParseRefreshToken(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(configs.JWTRefreshSecret), nil
	})
	if err != nil {
		return "", err
	}
	userID, _ := claims["user_id"].(string)
	return userID, nil
}
