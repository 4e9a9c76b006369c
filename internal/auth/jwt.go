package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs the session tokens. Read from the environment so the
// key never lands in source control; the fallback only exists for local dev.
func jwtSecretKey() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("dev-only-insecure-secret")
}

// GenerateToken creates a new JWT for a given user ID.
func GenerateToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,                                // Subject is the user ID
		"exp": time.Now().Add(time.Hour * 72).Unix(), // Expires in 3 days
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(jwtSecretKey())
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the user ID (subject) if the token is valid.
func ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecretKey(), nil
	})
	if err != nil {
		return 0, err // expired, malformed, bad signature
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userIDFloat, ok := claims["sub"].(float64)
		if !ok {
			return 0, errors.New("invalid subject claim")
		}
		// JSON numbers come back as float64
		return int64(userIDFloat), nil
	}

	return 0, errors.New("invalid token")
}
