package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/metrics"
)

// MaxInbox ограничивает число последних уведомлений на сессию.
const MaxInbox = 20

// NoticeService хранит входящие уведомления сессии, которые браузер забирает
// и показывает как toast.
type NoticeService struct {
	log   *slog.Logger
	mu    sync.Mutex
	inbox *cache.Cache
}

func NewNoticeService(log *slog.Logger, ttl time.Duration) *NoticeService {
	return &NoticeService{
		log:   log,
		inbox: cache.New(ttl, 2*ttl),
	}
}

// For возвращает Notifier, складывающий уведомления в ящик сессии.
func (s *NoticeService) For(sessionID string) apiclient.Notifier {
	return apiclient.NotifierFunc(func(_ context.Context, n apiclient.Notification) {
		s.Push(sessionID, n)
	})
}

func (s *NoticeService) Push(sessionID string, n apiclient.Notification) {
	const op = "services.NoticeService.Push"

	metrics.BackendNotificationsTotal.WithLabelValues(string(n.Category)).Inc()

	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var list []apiclient.Notification
	if v, found := s.inbox.Get(sessionID); found {
		list = v.([]apiclient.Notification)
	}

	list = append(list, n)
	if len(list) > MaxInbox {
		list = list[len(list)-MaxInbox:]
	}

	s.inbox.SetDefault(sessionID, list)

	s.log.Debug("notification queued",
		slog.String("op", op),
		slog.String("category", string(n.Category)),
		slog.Int("status", n.Status),
	)
}

// Drain отдаёт накопленные уведомления и очищает ящик.
func (s *NoticeService) Drain(sessionID string) []apiclient.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.inbox.Get(sessionID)
	if !found {
		return []apiclient.Notification{}
	}
	s.inbox.Delete(sessionID)

	return v.([]apiclient.Notification)
}
