package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/snipvault/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL matches the real service's default access token lifetime
const tokenTTL = 30 * time.Minute

// tokenIssuer signs HS256 access tokens whose subject is the username
type tokenIssuer struct {
	secret []byte
}

func newTokenIssuer(secret string) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret)}
}

func (t *tokenIssuer) issue(username string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (t *tokenIssuer) subject(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// userKey is the echo context key holding the authenticated *user
const userKey = "user"

// requireUser resolves the bearer token to a stored user
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || token == "" {
			return fail(http.StatusUnauthorized, "Not authenticated")
		}

		username, err := s.tokens.subject(token)
		if err != nil {
			return fail(http.StatusUnauthorized, "Could not validate credentials")
		}

		s.mu.Lock()
		u, ok := s.users[username]
		s.mu.Unlock()
		if !ok {
			return fail(http.StatusUnauthorized, "Could not validate credentials")
		}

		c.Set(userKey, u)
		return next(c)
	}
}

func currentUser(c echo.Context) *user {
	u, _ := c.Get(userKey).(*user)
	return u
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusUnprocessableEntity, "Invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fail(http.StatusUnprocessableEntity, "username, email and password are required")
	}
	if !strings.Contains(req.Email, "@") {
		return fail(http.StatusUnprocessableEntity, "value is not a valid email address")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[req.Username]; exists {
		return fail(http.StatusBadRequest, "Username already registered")
	}
	for _, u := range s.users {
		if u.Email == req.Email {
			return fail(http.StatusBadRequest, "Email already registered")
		}
	}

	s.nextUserID++
	now := model.Timestamp{Time: s.now().UTC()}
	u := &user{
		UserInfo: model.UserInfo{
			ID:        s.nextUserID,
			Username:  req.Username,
			Email:     req.Email,
			CreatedAt: &now,
			UpdatedAt: &now,
		},
		PasswordHash: hash,
	}
	s.users[u.Username] = u

	return c.JSON(http.StatusOK, u.UserInfo)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusUnprocessableEntity, "Invalid request body")
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		return fail(http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := s.tokens.issue(u.Username, s.now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c).UserInfo)
}
