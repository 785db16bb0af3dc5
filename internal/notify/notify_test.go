package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	name string
	err  error
	got  []string
}

func (r *recordingSender) Send(_ context.Context, title, message string) error {
	r.got = append(r.got, title+"|"+message)
	return r.err
}

func (r *recordingSender) Name() string { return r.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_FiltersEvents(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, []string{EventArbitrage}, discardLogger())

	require.NoError(t, n.Notify(context.Background(), EventSports, "t", "m"))
	assert.Empty(t, s.got)

	require.NoError(t, n.Notify(context.Background(), EventArbitrage, "t", "m"))
	assert.Equal(t, []string{"t|m"}, s.got)
}

func TestNotifier_EmptyFilterAllowsAll(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, nil, discardLogger())

	require.NoError(t, n.Notify(context.Background(), "anything", "t", "m"))
	assert.Len(t, s.got, 1)
}

func TestNotifier_ContinuesPastFailures(t *testing.T) {
	boom := errors.New("boom")
	bad := &recordingSender{name: "bad", err: boom}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())

	err := n.Notify(context.Background(), EventArbitrage, "t", "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
	assert.Len(t, good.got, 1)
}

func TestTelegramSender_Send(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := NewTelegramSender("TOKEN", "42", WithTelegramAPI(srv.URL))
	require.NoError(t, s.Send(context.Background(), "[Arbitrage A]", "ROI: 5.26%"))

	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "[Arbitrage A]\nROI: 5.26%", got.Text)
	assert.Empty(t, got.ParseMode)
	assert.True(t, got.DisableWebPagePreview)
}

func TestTelegramSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewTelegramSender("T", "1", WithTelegramAPI(srv.URL), WithParseMode("Markdown"))
	err := s.Send(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 400")
}

func TestDiscordSender_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewDiscordSender(srv.URL).Send(context.Background(), "Title", "body"))
	assert.Equal(t, "**Title**\nbody", got["content"])
}
