package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/metrics"
)

func newNoticeService() *NoticeService {
	return NewNoticeService(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Minute)
}

func TestNoticeService_Drain(t *testing.T) {
	s := newNoticeService()
	before := testutil.ToFloat64(metrics.BackendNotificationsTotal.WithLabelValues("network"))

	s.For("a").Notify(context.Background(), apiclient.Notification{Category: apiclient.CategoryNetwork, Message: apiclient.MessageNoConnection})
	s.For("b").Notify(context.Background(), apiclient.Notification{Category: apiclient.CategoryServer, Message: "Out of stock", Status: 409})

	got := s.Drain("a")
	require.Len(t, got, 1)
	assert.Equal(t, apiclient.MessageNoConnection, got[0].Message)
	assert.Empty(t, s.Drain("a"))

	got = s.Drain("b")
	require.Len(t, got, 1)
	assert.Equal(t, 409, got[0].Status)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BackendNotificationsTotal.WithLabelValues("network")))
}

func TestNoticeService_KeepsLatest(t *testing.T) {
	s := newNoticeService()

	for i := 0; i < MaxInbox+5; i++ {
		s.Push("sid", apiclient.Notification{Category: apiclient.CategoryServer, Message: fmt.Sprint(i)})
	}

	got := s.Drain("sid")
	require.Len(t, got, MaxInbox)
	assert.Equal(t, "5", got[0].Message)
	assert.Equal(t, fmt.Sprint(MaxInbox+4), got[MaxInbox-1].Message)
}

func TestNoticeService_NoSession(t *testing.T) {
	s := newNoticeService()

	s.Push("", apiclient.Notification{Category: apiclient.CategoryUnknown})
	assert.Empty(t, s.Drain(""))
}
