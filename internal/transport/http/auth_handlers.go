package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/logger/sl"
	"handmade_shop/internal/transport/http/dto"
	"handmade_shop/internal/transport/http/dto/request"
	"handmade_shop/internal/transport/http/dto/response"
)

// Login godoc
// @Summary Вход покупателя
// @Description Вход по email и паролю. Токены остаются на стороне шлюза, в ответе только профиль.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.Response{data=models.User} "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Failure 409 {object} response.ErrorResponse "Уже выполнен вход"
// @Router /api/v1/auth/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	user, err := r.AuthService.Login(c.Request().Context(), SessionID(c), req.Email, req.Password)
	if err != nil {
		if apiclient.StatusOf(err) == http.StatusUnauthorized || apiclient.IsSessionFatal(err) {
			log.Info("authentication failed", slog.String("email", req.Email))
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}
		return r.backendError(c, log, err)
	}

	r.remember(c, user)

	return c.JSON(http.StatusOK, response.SuccessResponse(user))
}

// Register godoc
// @Summary Регистрация покупателя
// @Description Создание аккаунта. Бэкенд отправляет код подтверждения на почту.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterInput true "Данные для регистрации"
// @Success 201 {object} response.Response{data=models.RegisterResult} "Успешная регистрация"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже существует"
// @Router /api/v1/auth/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.RegisterInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	result, err := r.AuthService.Register(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	log.Info("user registered", slog.String("email", req.Email))

	return c.JSON(http.StatusCreated, response.SuccessResponse(result))
}

// VerifyOTP godoc
// @Summary Подтверждение почты кодом
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPInput true "Email и код"
// @Success 200 {object} response.Response{data=models.OTPVerifyResult}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/auth/verify-otp [post]
func (r *Routers) VerifyOTP(c echo.Context) error {
	const op = "http.routers.VerifyOTP"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.VerifyOTPInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	result, err := r.AuthService.VerifyOTP(c.Request().Context(), SessionID(c), req.Email, req.OTP)
	if err != nil {
		return r.backendError(c, log, err)
	}

	if result.Data != nil && result.Data.AccessToken != "" {
		r.remember(c, &result.Data.User)
		// токены не покидают шлюз
		result.Data.AccessToken = ""
		result.Data.RefreshToken = ""
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// @Router /api/v1/auth/resend-otp [post]
func (r *Routers) ResendOTP(c echo.Context) error {
	const op = "http.routers.ResendOTP"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.EmailInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	result, err := r.AuthService.ResendOTP(c.Request().Context(), SessionID(c), req.Email)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// @Router /api/v1/auth/verify-email [put]
func (r *Routers) VerifyEmail(c echo.Context) error {
	const op = "http.routers.VerifyEmail"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.VerifyEmailInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	result, err := r.AuthService.VerifyEmail(c.Request().Context(), SessionID(c), req.Token)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// @Router /api/v1/auth/forgot-password [post]
func (r *Routers) ForgotPassword(c echo.Context) error {
	const op = "http.routers.ForgotPassword"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.EmailInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	result, err := r.AuthService.ForgotPassword(c.Request().Context(), SessionID(c), req.Email)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// @Router /api/v1/auth/reset-password [post]
func (r *Routers) ResetPassword(c echo.Context) error {
	const op = "http.routers.ResetPassword"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.ResetPasswordInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	result, err := r.AuthService.ResetPassword(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// ChangePassword godoc
// @Summary Смена пароля
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordInput true "Текущий и новый пароль"
// @Success 200 {object} response.Response{data=models.MessageResult}
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Router /api/v1/auth/change-password [post]
func (r *Routers) ChangePassword(c echo.Context) error {
	const op = "http.routers.ChangePassword"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.ChangePasswordInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	result, err := r.AuthService.ChangePassword(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// Logout godoc
// @Summary Выход
// @Description Отзывает refresh-токен на бэкенде и стирает учётные данные сессии.
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	err := r.AuthService.Logout(c.Request().Context(), SessionID(c))
	r.forget(c)
	if err != nil {
		log.Error("failed to logout", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("Logged out"))
}

type sessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Role          string `json:"role,omitempty"`
	ExpiresAt     int64  `json:"expires_at,omitempty"`
}

// Session godoc
// @Summary Состояние сессии
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response{data=sessionInfo}
// @Router /api/v1/auth/session [get]
func (r *Routers) Session(c echo.Context) error {
	const op = "http.routers.Session"

	log := r.log.With(
		slog.String("op", op),
	)

	meta, ok, err := r.AuthService.Session(c.Request().Context(), SessionID(c))
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	info := sessionInfo{Authenticated: ok}
	if ok {
		info.UserID = UserID(c)
		if info.UserID == "" {
			info.UserID = meta.UserID
		}
		info.Role = Role(c)
		if info.Role == "" {
			info.Role = meta.Role
		}
		info.ExpiresAt = meta.ExpiresAt
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(info))
}

// @Router /api/v1/auth/profile [get]
func (r *Routers) Profile(c echo.Context) error {
	const op = "http.routers.Profile"

	log := r.log.With(
		slog.String("op", op),
	)

	user, err := r.AuthService.Profile(c.Request().Context(), SessionID(c))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(user))
}

// @Router /api/v1/auth/profile [put]
func (r *Routers) UpdateProfile(c echo.Context) error {
	const op = "http.routers.UpdateProfile"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.ProfileInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	user, err := r.AuthService.UpdateProfile(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(user))
}

// @Router /api/v1/users/me [get]
func (r *Routers) Me(c echo.Context) error {
	const op = "http.routers.Me"

	log := r.log.With(
		slog.String("op", op),
	)

	user, err := r.AuthService.Me(c.Request().Context(), SessionID(c))
	if err != nil {
		return r.backendError(c, log, err)
	}

	if user.ID != "" && user.RoleName != "" && (user.ID != UserID(c) || user.RoleName != Role(c)) {
		r.remember(c, user)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(user))
}

// Notifications godoc
// @Summary Уведомления сессии
// @Description Забирает накопленные сообщения об ошибках бэкенда для показа пользователю.
// @Tags notifications
// @Produce json
// @Success 200 {object} response.Response{data=[]apiclient.Notification}
// @Router /api/v1/notifications [get]
func (r *Routers) Notifications(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.NoticeService.Drain(SessionID(c))))
}
