package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/validation"
	"storefront/pkg/logger"
)

// ErrBackendUnavailable is returned when the backend cannot be reached.
var ErrBackendUnavailable = errors.New("connection error with the server, check that the backend is running")

// LoginError carries the message shown on a rejected login.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string { return e.Message }

// AuthService logs the admin in and out against the backend.
type AuthService struct {
	client   *apiclient.Client
	session  *session.Store
	validate *validation.Validator
}

// NewAuthService creates a new AuthService.
func NewAuthService(client *apiclient.Client, sess *session.Store) *AuthService {
	return &AuthService{
		client:   client,
		session:  sess,
		validate: validation.New(),
	}
}

// Login checks creds with the backend and activates the session.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	if err := s.validate.Struct(creds); err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	err := s.client.Do(ctx, "/api/auth/login", apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   apiclient.JSON{Value: creds},
	}, &resp)
	if err != nil {
		var reqErr *apiclient.RequestError
		if errors.As(err, &reqErr) {
			msg := errorField(reqErr.Body)
			if msg == "" {
				msg = "invalid credentials"
			}
			logger.Info(ctx).Int("status", reqErr.Status).Msg("Login rejected")
			return nil, &LoginError{Message: msg}
		}
		logger.Error(ctx).Err(err).Msg("Error during login")
		return nil, ErrBackendUnavailable
	}
	if resp.Token == "" {
		return nil, &LoginError{Message: "invalid credentials"}
	}

	if err := s.session.Login(resp.User, resp.Token); err != nil {
		return nil, err
	}
	logger.Info(ctx).Str("email", resp.User.Email()).Msg("Admin logged in")
	return resp.User, nil
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Logout(); err != nil {
		logger.Error(ctx).Err(err).Msg("Error clearing persisted session")
		return err
	}
	return nil
}

// Session returns the current session snapshot.
func (s *AuthService) Session() session.Info {
	return s.session.Info()
}

// errorField returns the "error" field of a JSON error body.
func errorField(body string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return payload.Error
}
