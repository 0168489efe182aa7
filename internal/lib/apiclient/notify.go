package apiclient

import (
	"context"
	"errors"
)

const (
	MessageUnexpected   = "Something went wrong"
	MessageNoConnection = "Cannot connect to the server"
)

type Category string

const (
	CategoryServer  Category = "server"
	CategoryNetwork Category = "network"
	CategoryUnknown Category = "unknown"
)

// Notification несёт короткое сообщение для пользователя (toast).
type Notification struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Status   int      `json:"status,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}

// Classify выбирает текст уведомления по виду отказа:
// ответ получен, ответа нет, запрос не ушёл.
func Classify(err error) Notification {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return Notification{Category: CategoryUnknown, Message: MessageUnexpected}
	}

	switch httpErr.Kind {
	case KindServer:
		msg := httpErr.Message
		if msg == "" {
			msg = MessageUnexpected
		}
		return Notification{Category: CategoryServer, Message: msg, Status: httpErr.StatusCode}
	case KindNetwork:
		return Notification{Category: CategoryNetwork, Message: MessageNoConnection}
	default:
		return Notification{Category: CategoryUnknown, Message: MessageUnexpected}
	}
}

func shouldNotify(err error) bool {
	switch KindOf(err) {
	case KindServer, KindNetwork, KindClient:
		return true
	default:
		return false
	}
}
