package suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const backendSecret = "backend-signing-key"

// Backend изображает REST API магазина с ротацией токенов.
type Backend struct {
	*httptest.Server

	mu         sync.Mutex
	users      map[string]string
	access     string
	refresh    string
	generation int
	refreshes  int
	revoked    bool
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{users: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("POST /auth/verify-otp", b.verifyOTP)
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/refresh-token", b.refreshToken)
	mux.HandleFunc("POST /auth/logout", b.logout)
	mux.HandleFunc("GET /auth/profile", b.authorized(b.profile))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)

	return b
}

func (b *Backend) AddUser(email, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.users[email] = password
}

// Expire делает текущий access-токен недействительным, refresh остаётся живым.
func (b *Backend) Expire() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.access = "expired"
}

// Revoke отзывает refresh-токен: следующее обновление закончится 401.
func (b *Backend) Revoke() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.access = "expired"
	b.revoked = true
}

func (b *Backend) Refreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.refreshes
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	b.mu.Lock()
	_, exists := b.users[req.Email]
	if !exists {
		b.users[req.Email] = req.Password
	}
	b.mu.Unlock()

	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already exists"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"msg": "Verification code sent",
		"data": map[string]any{
			"user":             map[string]any{"id": "7", "email": req.Email, "roleName": "Customer"},
			"needVerification": true,
		},
	})
}

func (b *Backend) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OTP != "123456" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid OTP"})
		return
	}

	access, refresh := b.issue(req.Email)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email verified",
		"data": map[string]any{
			"user":         map[string]any{"id": "7", "email": req.Email, "roleName": "Customer", "isVerified": true},
			"accessToken":  access,
			"refreshToken": refresh,
		},
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	b.mu.Lock()
	password, ok := b.users[req.Email]
	b.mu.Unlock()

	if !ok || password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	access, refresh := b.issue(req.Email)

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"userProfile":  map[string]any{"id": "7", "email": req.Email, "roleName": "Customer"},
			"accessToken":  access,
			"refreshToken": refresh,
		},
	})
}

func (b *Backend) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.refreshes++
	valid := !b.revoked && req.RefreshToken != "" && req.RefreshToken == b.refresh
	b.mu.Unlock()

	if !valid {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Refresh token expired"})
		return
	}

	access, refresh := b.issue("")

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]string{"accessToken": access, "refreshToken": refresh},
	})
}

func (b *Backend) logout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.access, b.refresh = "", ""
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (b *Backend) profile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"id": "7", "email": "buyer@example.com", "roleName": "Customer"},
	})
}

func (b *Backend) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		b.mu.Lock()
		ok := token != "" && token == b.access
		b.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}

		next(w, r)
	}
}

func (b *Backend) issue(email string) (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation++
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":      "7",
		"email":    email,
		"roleName": "Customer",
		"gen":      b.generation,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	access, err := token.SignedString([]byte(backendSecret))
	if err != nil {
		panic(err)
	}

	b.access = access
	b.refresh = fmt.Sprintf("refresh-%d", b.generation)
	b.revoked = false

	return b.access, b.refresh
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
