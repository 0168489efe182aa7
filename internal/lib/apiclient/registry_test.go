package apiclient_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handmade_shop/internal/lib/apiclient"
)

func TestRegistry_OneClientPerSession(t *testing.T) {
	var mu sync.Mutex
	built := map[string]int{}

	reg := apiclient.NewRegistry(time.Minute, func(sid string) (*apiclient.Client, error) {
		mu.Lock()
		built[sid]++
		mu.Unlock()
		return apiclient.New(nil, "http://backend.local/api", newMemStore("", ""))
	})

	var wg sync.WaitGroup
	clients := make([]*apiclient.Client, 10)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := reg.Client("sid-1")
			assert.NoError(t, err)
			clients[i] = c
		}(i)
	}
	wg.Wait()

	for _, c := range clients {
		assert.Same(t, clients[0], c)
	}

	other, err := reg.Client("sid-2")
	require.NoError(t, err)
	assert.NotSame(t, clients[0], other)

	assert.Equal(t, 1, built["sid-1"])
	assert.Equal(t, 1, built["sid-2"])
	assert.Equal(t, 2, reg.Len())

	reg.Forget("sid-1")
	assert.Equal(t, 1, reg.Len())

	again, err := reg.Client("sid-1")
	require.NoError(t, err)
	assert.NotSame(t, clients[0], again)
	assert.Equal(t, 2, built["sid-1"])
}

func TestRegistry_Errors(t *testing.T) {
	reg := apiclient.NewRegistry(time.Minute, func(string) (*apiclient.Client, error) {
		return nil, errors.New("boom")
	})

	_, err := reg.Client("")
	assert.Error(t, err)

	_, err = reg.Client("sid")
	assert.ErrorContains(t, err, "boom")
	assert.Zero(t, reg.Len())
}

func TestRegistry_Expiry(t *testing.T) {
	reg := apiclient.NewRegistry(30*time.Millisecond, func(string) (*apiclient.Client, error) {
		return apiclient.New(nil, "http://backend.local/api", newMemStore("", ""))
	})

	first, err := reg.Client("sid")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	second, err := reg.Client("sid")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegistry_RefreshKeepsEntryAlive(t *testing.T) {
	backend := &rotatingBackend{refresh: "r0", delay: 300 * time.Millisecond}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	reg := apiclient.NewRegistry(300*time.Millisecond, func(string) (*apiclient.Client, error) {
		return newClient(t, srv.URL, newMemStore("old", "r0"), &recorder{}), nil
	})

	first, err := reg.Client("sid")
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := first.Get(context.Background(), "/user/cart/1")
		done <- err
	}()

	// без продления запись истекла бы на середине обновления
	time.Sleep(150 * time.Millisecond)

	during, err := reg.Client("sid")
	require.NoError(t, err)
	assert.Same(t, first, during)

	require.NoError(t, <-done)
	assert.Equal(t, int32(1), backend.refreshCalls.Load())
}
