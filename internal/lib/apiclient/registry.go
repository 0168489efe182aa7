package apiclient

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Factory строит клиента для сессии браузера.
type Factory func(sessionID string) (*Client, error)

// Registry держит по одному клиенту на сессию, чтобы все запросы
// сессии делили одно состояние обновления токенов.
type Registry struct {
	mu      sync.Mutex
	clients *cache.Cache
	factory Factory
}

func NewRegistry(ttl time.Duration, factory Factory) *Registry {
	cleanup := ttl / 2
	if cleanup <= 0 || cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}

	return &Registry{
		clients: cache.New(ttl, cleanup),
		factory: factory,
	}
}

// Client возвращает клиента сессии, создавая его при первом обращении.
// Каждое обращение продлевает срок жизни записи. Начало обновления
// токенов тоже продлевает запись, иначе она могла бы истечь посреди
// обновления и следующий запрос сессии получил бы второго клиента
// со своим шлюзом.
func (r *Registry) Client(sessionID string) (*Client, error) {
	const op = "apiclient.Registry.Client"

	if sessionID == "" {
		return nil, fmt.Errorf("%s: empty session id", op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, found := r.clients.Get(sessionID); found {
		c := v.(*Client)
		r.clients.SetDefault(sessionID, c)
		return c, nil
	}

	c, err := r.factory(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.touch = func() { r.touch(sessionID, c) }
	r.clients.SetDefault(sessionID, c)

	return c, nil
}

// touch продлевает запись, если сессию за это время не занял другой клиент.
func (r *Registry) touch(sessionID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, found := r.clients.Get(sessionID); found && v.(*Client) != c {
		return
	}
	r.clients.SetDefault(sessionID, c)
}

func (r *Registry) Forget(sessionID string) {
	r.clients.Delete(sessionID)
}

func (r *Registry) Len() int {
	return r.clients.ItemCount()
}
