package models

// TokenPair хранит пару учётных данных пользователя магазина.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

type TokenMeta struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

type LoginResult struct {
	UserProfile  User   `json:"userProfile"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (r LoginResult) Tokens() TokenPair {
	return TokenPair{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}

type RegisterResult struct {
	Data *struct {
		User             User `json:"user"`
		NeedVerification bool `json:"needVerification"`
	} `json:"data,omitempty"`
	Msg string `json:"msg"`
}

type OTPVerifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		User         User   `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data,omitempty"`
}

// MessageResult описывает типовой ответ бэкенда на команды без полезной нагрузки.
type MessageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Msg     string `json:"msg,omitempty"`
}
