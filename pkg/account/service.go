package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/shopclient/pkg/apiclient"
	"github.com/dmitrymomot/shopclient/pkg/session"
	"github.com/dmitrymomot/shopclient/pkg/validator"
)

var (
	// ErrLoginFailed indicates the server rejected the credentials. The
	// wrapped chain carries the server's message.
	ErrLoginFailed = errors.New("account.login_failed")

	// ErrRegistrationFailed indicates the server rejected the registration.
	ErrRegistrationFailed = errors.New("account.registration_failed")
)

// Option configures service creation.
type Option func(*Service)

// WithLogger sets the service's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// Service runs the login, registration, and logout flows. Together with the
// auth guard it is the only writer of the session store: login replaces the
// session wholesale with what the server returned, logout clears it.
type Service struct {
	api      *apiclient.Client
	sessions *session.Store
	log      *slog.Logger
}

// New creates an account service.
func New(api *apiclient.Client, sessions *session.Store, opts ...Option) *Service {
	s := &Service{
		api:      api,
		sessions: sessions,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates against the remote API and installs the returned
// identity as the current session. Returns the server's welcome message.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if err := validator.Apply(
		validator.RequiredString("username", username),
		validator.RequiredString("password", password),
	); err != nil {
		return "", err
	}

	var out struct {
		Message     string `json:"message"`
		UserID      int64  `json:"user_id"`
		Username    string `json:"username"`
		IsAdmin     bool   `json:"is_admin"`
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := s.api.Post(ctx, "/login", body, &out); err != nil {
		if httpErr := apiclient.AsHTTPError(err); httpErr != nil {
			return "", errors.Join(ErrLoginFailed, err)
		}
		return "", err
	}

	sess := session.Authenticated(out.UserID, out.Username, out.IsAdmin, out.AccessToken)
	if err := s.sessions.Set(ctx, sess); err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "logged in",
		slog.Int64("user_id", out.UserID),
		slog.String("username", out.Username),
		slog.Bool("is_admin", out.IsAdmin),
	)
	return out.Message, nil
}

// Register creates a new account. It does not log the user in; the remote
// API hands out credentials only via Login. Returns the server's message.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, error) {
	if err := validator.Apply(
		validator.RequiredString("username", username),
		validator.RequiredString("email", email),
		validator.RequiredString("password", password),
	); err != nil {
		return "", err
	}

	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := s.api.Post(ctx, "/register", body, &out); err != nil {
		if httpErr := apiclient.AsHTTPError(err); httpErr != nil {
			return "", errors.Join(ErrRegistrationFailed, err)
		}
		return "", err
	}
	return out.Message, nil
}

// Logout clears the session locally. The bearer credential simply stops
// being sent; the remote API keeps no server-side session to tear down.
func (s *Service) Logout(ctx context.Context) error {
	username := strings.TrimSpace(s.sessions.Get().Username)
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	if username != "" {
		s.log.InfoContext(ctx, "logged out", slog.String("username", username))
	}
	return nil
}
