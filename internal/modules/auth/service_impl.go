package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSubject          = errors.New("token has no subject")
)

type service struct {
	client *apiclient.Client
	tokens TokenStore
}

// NewService creates a new auth service. The client should read its bearer
// token from the same store.
func NewService(client *apiclient.Client, tokens TokenStore) Service {
	return &service{client: client, tokens: tokens}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

func (s *service) Login(ctx context.Context, login, password string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	var out loginResponse
	err := s.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   loginRequest{Login: login, Password: password},
		Public: true,
	}, &out)
	if apiclient.IsStatus(err, http.StatusUnauthorized) {
		return "", fmt.Errorf("%w: %s", ErrInvalidCredentials, apiclient.Message(err))
	}
	if err != nil {
		return "", err
	}
	if _, err := Subject(out.AccessToken); err != nil {
		return "", err
	}
	if err := s.tokens.Save(out.AccessToken); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return out.AccessToken, nil
}

func (s *service) Logout() error { return s.tokens.Clear() }

func (s *service) Token() string { return s.tokens.Token() }

// Subject decodes the sub claim of token. The signature is not verified;
// the backend does that on every request.
func Subject(token string) (string, error) {
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}
