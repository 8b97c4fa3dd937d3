// Package auth contains handler relate to log in and create user account
package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// SECRET_KEY signs every issued access token.
var SECRET_KEY = os.Getenv("SECRET_KEY")

// JwtIssuer identifies tokens issued by this service.
var JwtIssuer = "HireSight"

// GenerateStandardToken issues a signed access token for the given user id.
// The second return value is reserved for a refresh token.
func GenerateStandardToken(userID uuid.UUID) (string, string, error) {

	generatedAccessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    JwtIssuer,
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})

	signedToken, err := generatedAccessToken.SignedString([]byte(SECRET_KEY))
	if err != nil {
		return "", "", fmt.Errorf("Failed to sign token: %s", err)
	}

	return signedToken, "", nil
}

// ValidatedToken parses and validates an access token string.
func ValidatedToken(encodeToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodeToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("Invalid token")
		}
		return []byte(SECRET_KEY), nil
	})
}
