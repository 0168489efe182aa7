package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/jwt"
	"handmade_shop/internal/lib/logger/sl"
	"handmade_shop/internal/storage"
	"handmade_shop/internal/transport/http/dto"
)

var ErrNoTokens = errors.New("backend returned no credentials")

type ClientProvider interface {
	Client(sessionID string) (*apiclient.Client, error)
}

type CredentialRepository interface {
	GetCredentials(ctx context.Context, sessionID string) (models.TokenPair, error)
	SaveCredentials(ctx context.Context, sessionID string, pair models.TokenPair) error
	DeleteCredentials(ctx context.Context, sessionID string) error
}

type AuthService struct {
	log     *slog.Logger
	clients ClientProvider
	creds   CredentialRepository
}

func NewAuthService(log *slog.Logger, clients ClientProvider, creds CredentialRepository) *AuthService {
	return &AuthService{
		log:     log,
		clients: clients,
		creds:   creds,
	}
}

// Login входит в магазин и сохраняет пару токенов за сессией браузера.
func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) (*models.User, error) {
	const op = "services.AuthService.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("attempting to login user")

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		log.Warn("login rejected", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result models.LoginResult
	if err := resp.DecodeData(&result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair := result.Tokens()
	if pair.AccessToken == "" {
		log.Error("login response has no access token")
		return nil, fmt.Errorf("%s: %w", op, ErrNoTokens)
	}

	if err := s.creds.SaveCredentials(ctx, sessionID, pair); err != nil {
		log.Error("failed to save credentials", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := result.UserProfile
	fillFromToken(&user, pair.AccessToken)

	log.Info("user logged in successfully", slog.String("user_id", user.ID))

	return &user, nil
}

func (s *AuthService) Register(ctx context.Context, sessionID string, input dto.RegisterInput) (*models.RegisterResult, error) {
	const op = "services.AuthService.Register"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", input.Email),
	)

	log.Info("register user")

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Post(ctx, "/auth/register", input)
	if err != nil {
		log.Warn("registration failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result models.RegisterResult
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered")

	return &result, nil
}

// VerifyOTP подтверждает почту кодом. Если бэкенд сразу выдал токены, сессия считается вошедшей.
func (s *AuthService) VerifyOTP(ctx context.Context, sessionID, email, otp string) (*models.OTPVerifyResult, error) {
	const op = "services.AuthService.VerifyOTP"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Post(ctx, "/auth/verify-otp", map[string]string{
		"email": email,
		"otp":   otp,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result models.OTPVerifyResult
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if result.Data != nil && result.Data.AccessToken != "" {
		pair := models.TokenPair{
			AccessToken:  result.Data.AccessToken,
			RefreshToken: result.Data.RefreshToken,
		}
		if err := s.creds.SaveCredentials(ctx, sessionID, pair); err != nil {
			log.Error("failed to save credentials", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		fillFromToken(&result.Data.User, pair.AccessToken)
		log.Info("otp verified, session logged in")
	}

	return &result, nil
}

func (s *AuthService) ResendOTP(ctx context.Context, sessionID, email string) (*models.MessageResult, error) {
	const op = "services.AuthService.ResendOTP"

	return s.command(ctx, op, sessionID, http.MethodPost, "/auth/resend-otp", map[string]string{"email": email})
}

func (s *AuthService) VerifyEmail(ctx context.Context, sessionID, token string) (*models.MessageResult, error) {
	const op = "services.AuthService.VerifyEmail"

	return s.command(ctx, op, sessionID, http.MethodPut, "/auth/verify-email", map[string]string{"token": token})
}

func (s *AuthService) ForgotPassword(ctx context.Context, sessionID, email string) (*models.MessageResult, error) {
	const op = "services.AuthService.ForgotPassword"

	return s.command(ctx, op, sessionID, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email})
}

func (s *AuthService) ResetPassword(ctx context.Context, sessionID string, input dto.ResetPasswordInput) (*models.MessageResult, error) {
	const op = "services.AuthService.ResetPassword"

	return s.command(ctx, op, sessionID, http.MethodPost, "/auth/reset-password", input)
}

func (s *AuthService) ChangePassword(ctx context.Context, sessionID string, input dto.ChangePasswordInput) (*models.MessageResult, error) {
	const op = "services.AuthService.ChangePassword"

	return s.command(ctx, op, sessionID, http.MethodPost, "/auth/change-password", input)
}

func (s *AuthService) Profile(ctx context.Context, sessionID string) (*models.User, error) {
	const op = "services.AuthService.Profile"

	return s.user(ctx, op, sessionID, "/auth/profile")
}

// Me отдаёт профиль из пользовательского сервиса, а не из сервиса авторизации.
func (s *AuthService) Me(ctx context.Context, sessionID string) (*models.User, error) {
	const op = "services.AuthService.Me"

	return s.user(ctx, op, sessionID, "/user/user-profile")
}

func (s *AuthService) UpdateProfile(ctx context.Context, sessionID string, input dto.ProfileInput) (*models.User, error) {
	const op = "services.AuthService.UpdateProfile"

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Put(ctx, "/auth/profile", input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	if err := resp.DecodeData(&user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

// Logout отзывает refresh-токен на бэкенде и в любом случае забывает пару.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	const op = "services.AuthService.Logout"

	log := s.log.With(slog.String("op", op))

	pair, err := s.creds.GetCredentials(ctx, sessionID)
	if err != nil && !errors.Is(err, storage.ErrCredentialsNotFound) {
		log.Error("failed to read credentials", sl.Err(err))
	}

	if pair.RefreshToken != "" {
		client, err := s.clients.Client(sessionID)
		if err == nil {
			_, err = client.Post(ctx, "/auth/logout", map[string]string{"token": pair.RefreshToken})
		}
		if err != nil {
			log.Warn("backend logout failed", sl.Err(err))
		}
	}

	if err := s.creds.DeleteCredentials(ctx, sessionID); err != nil {
		log.Error("failed to delete credentials", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged out")

	return nil
}

// Session сообщает, есть ли у сессии учётные данные, и роль из access-токена.
func (s *AuthService) Session(ctx context.Context, sessionID string) (models.TokenMeta, bool, error) {
	const op = "services.AuthService.Session"

	pair, err := s.creds.GetCredentials(ctx, sessionID)
	if errors.Is(err, storage.ErrCredentialsNotFound) {
		return models.TokenMeta{}, false, nil
	}
	if err != nil {
		return models.TokenMeta{}, false, fmt.Errorf("%s: %w", op, err)
	}

	meta, _ := jwt.ParseUnverified(pair.AccessToken)

	return meta, true, nil
}

func (s *AuthService) user(ctx context.Context, op, sessionID, path string) (*models.User, error) {
	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	if err := resp.DecodeData(&user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (s *AuthService) command(ctx context.Context, op, sessionID, method, path string, body any) (*models.MessageResult, error) {
	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Do(ctx, method, path, body)
	if err != nil {
		s.log.Warn("backend command failed", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result models.MessageResult
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &result, nil
}

func fillFromToken(user *models.User, accessToken string) {
	meta, err := jwt.ParseUnverified(accessToken)
	if err != nil {
		return
	}
	if user.ID == "" {
		user.ID = meta.UserID
	}
	if user.Email == "" {
		user.Email = meta.Email
	}
	if user.RoleName == "" {
		user.RoleName = meta.Role
	}
}
