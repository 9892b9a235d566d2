package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/ticketwatch/internal/watch"
)

func testAlert() watch.Alert {
	return watch.Alert{
		Title:       "Ticket value >= 9.5",
		Message:     "Score 9.7 | 104/F | Qty 2 | $145",
		Priority:    0,
		Fingerprint: "abc123",
	}
}

func TestNewPushoverRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewPushover(Config{UserKey: "", APIToken: "token"}, zap.NewNop())
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewPushover(Config{UserKey: "user", APIToken: " "}, zap.NewNop())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestPushoverNotifySendsForm(t *testing.T) {
	t.Parallel()

	var captured map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		captured = map[string]string{
			"token":    r.PostFormValue("token"),
			"user":     r.PostFormValue("user"),
			"title":    r.PostFormValue("title"),
			"message":  r.PostFormValue("message"),
			"priority": r.PostFormValue("priority"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := NewPushover(Config{
		UserKey:  "user-key",
		APIToken: "api-token",
		Endpoint: srv.URL,
		Timeout:  time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.Notify(context.Background(), testAlert()))
	require.Equal(t, "api-token", captured["token"])
	require.Equal(t, "user-key", captured["user"])
	require.Equal(t, "Ticket value >= 9.5", captured["title"])
	require.Contains(t, captured["message"], "Score 9.7")
	require.Equal(t, "0", captured["priority"])
}

func TestPushoverNotifyNon2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p, err := NewPushover(Config{
		UserKey:  "user-key",
		APIToken: "bad-token",
		Endpoint: srv.URL,
		Timeout:  time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	require.Error(t, p.Notify(context.Background(), testAlert()))
}

func TestPushoverNotifyTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close() // refuse connections

	p, err := NewPushover(Config{
		UserKey:  "user-key",
		APIToken: "api-token",
		Endpoint: srv.URL,
		Timeout:  time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	require.Error(t, p.Notify(context.Background(), testAlert()))
}

func TestLogOnlyNotifyAlwaysSucceeds(t *testing.T) {
	t.Parallel()

	n := NewLogOnly(zap.NewNop())
	require.NoError(t, n.Notify(context.Background(), testAlert()))
}
