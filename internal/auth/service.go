package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/inkcanvas/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const defaultTokenTTL = 24 * time.Hour

// Service issues and validates session tokens. Everyone who knows the
// server's access key may draw; there are no stored accounts.
type Service struct {
	jwtSecret     []byte
	accessKeyHash []byte
	ttl           time.Duration
	now           func() time.Time
}

// NewService returns a service signing with jwtSecret. accessKeyHash is a
// bcrypt hash of the access key; when empty any key is accepted.
func NewService(jwtSecret, accessKeyHash string) *Service {
	return &Service{
		jwtSecret:     []byte(jwtSecret),
		accessKeyHash: []byte(accessKeyHash),
		ttl:           defaultTokenTTL,
		now:           time.Now,
	}
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// HashAccessKey returns the bcrypt hash to configure for key.
func HashAccessKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), 12)
	if err != nil {
		return "", fmt.Errorf("hash access key: %w", err)
	}
	return string(hash), nil
}

// Login checks the access key and issues a token for a fresh user id.
func (s *Service) Login(displayName, accessKey string) (*AuthResult, error) {
	if len(s.accessKeyHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(s.accessKeyHash, []byte(accessKey)); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	user := User{ID: typeid.NewUserID(), DisplayName: displayName}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ValidateToken returns the user the token was issued to.
func (s *Service) ValidateToken(tokenString string) (*User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)
	return &User{ID: userID, DisplayName: name}, nil
}

func (s *Service) issueToken(user User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.DisplayName,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
