package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNoRefreshToken  = errors.New("refresh token is missing")
	ErrMalformedTokens = errors.New("refresh response has no access token")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Kind классифицирует отказ запроса к бэкенду.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuthExpired: 401 до повтора, восстанавливается обновлением токенов.
	KindAuthExpired
	// KindAuthExpiredAfterRetry: 401 после обновления и повтора, сессия закрывается.
	KindAuthExpiredAfterRetry
	// KindRefreshFailed: не удалось обновить пару токенов, сессия закрывается.
	KindRefreshFailed
	// KindServer: ответ не 2xx от бэкенда.
	KindServer
	// KindNetwork: запрос отправлен, ответа нет (таймаут, соединение).
	KindNetwork
	// KindClient: запрос не удалось даже собрать.
	KindClient
)

func (k Kind) String() string {
	switch k {
	case KindAuthExpired:
		return "auth_expired"
	case KindAuthExpiredAfterRetry:
		return "auth_expired_after_retry"
	case KindRefreshFailed:
		return "refresh_failed"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindClient:
		return "client"
	default:
		return "unknown"
	}
}

type HTTPError struct {
	Op         string
	Kind       Kind
	Method     string
	Path       string
	StatusCode int
	// сообщение из тела ответа бэкенда, если оно было
	Message string
	Body    []byte
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.Op)
	if e.Method != "" {
		fmt.Fprintf(&b, ": %s %s", e.Method, e.Path)
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": status=%d", e.StatusCode)
	}
	switch {
	case e.Message != "":
		fmt.Fprintf(&b, ": %s", e.Message)
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func KindOf(err error) Kind {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind
	}
	return KindUnknown
}

func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// MessageOf возвращает сообщение бэкенда из ошибки или пустую строку.
func MessageOf(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return ""
}

// IsSessionFatal сообщает, что сессия пользователя закрыта и нужен повторный вход.
func IsSessionFatal(err error) bool {
	switch KindOf(err) {
	case KindAuthExpiredAfterRetry, KindRefreshFailed:
		return true
	default:
		return false
	}
}

func statusError(op string, r *request, resp *Response) *HTTPError {
	kind := KindServer
	var cause error
	if resp.StatusCode == http.StatusUnauthorized {
		kind = KindAuthExpiredAfterRetry
		cause = ErrUnauthorized
	}

	return &HTTPError{
		Op:         op,
		Kind:       kind,
		Method:     r.method,
		Path:       r.path,
		StatusCode: resp.StatusCode,
		Message:    extractMessage(resp.Body),
		Body:       resp.Body,
		Err:        cause,
	}
}

// extractMessage достаёт поле message из тела ошибки.
// NestJS отдаёт message массивом при ошибках валидации.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Message json.RawMessage `json:"message"`
		Msg     string          `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Message) > 0 {
		var single string
		if err := json.Unmarshal(payload.Message, &single); err == nil {
			return single
		}

		var many []string
		if err := json.Unmarshal(payload.Message, &many); err == nil {
			return strings.Join(many, "; ")
		}
	}

	return payload.Msg
}
