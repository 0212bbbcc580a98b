package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
)

func TestSendPostsMessage(t *testing.T) {
	var got Message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(config.AlertConfig{WebhookURL: srv.URL, WebhookToken: "secret"})
	msg := Message{
		Subject: "Stock alerts",
		Text:    "1 critical",
		Alerts:  []models.Alert{{ProductID: "PRD-1", Name: "Milk", CurrentStock: 2, Level: models.AlertCritical}},
		SentAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, client.Send(context.Background(), msg))
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, msg, got)
}

func TestSendReportsReceiverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"channel archived"}`))
	}))
	defer srv.Close()

	client := NewClient(config.AlertConfig{WebhookURL: srv.URL})
	err := client.Send(context.Background(), Message{Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=400")
	assert.Contains(t, err.Error(), "channel archived")
}
