package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/pkg/clients/webhook"
)

type recordingTransport struct {
	name    string
	err     error
	digests []Digest
}

func (r *recordingTransport) Name() string { return r.name }

func (r *recordingTransport) Deliver(_ context.Context, d Digest) error {
	r.digests = append(r.digests, d)
	return r.err
}

type stubWebhook struct {
	sent []webhook.Message
}

func (s *stubWebhook) Send(_ context.Context, msg webhook.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

var generated = time.Date(2024, 7, 1, 7, 30, 0, 0, time.UTC)

func newTestNotifier(transports ...Transport) *Notifier {
	n := NewNotifier(nil, transports...)
	n.now = func() time.Time { return generated }
	return n
}

func sampleAlerts() []models.Alert {
	return []models.Alert{
		{ProductID: "PRD-1", Name: "Milk", CurrentStock: 1, Level: models.AlertCritical, Message: "Critical stock: Milk has only 1 left"},
		{ProductID: "PRD-2", Name: "Bread", CurrentStock: 12, Level: models.AlertReorder, Message: "Reorder Bread: stock at 12"},
	}
}

func TestBuildDigest(t *testing.T) {
	expiry := generated.AddDate(0, 0, -2)
	expiring := []models.ExpiringBatch{{
		ProductID:   "PRD-1",
		ProductName: "Milk",
		Batch:       models.Batch{BatchID: "BAT-1", Quantity: 4, ExpirationDate: &expiry},
		DaysLeft:    -2,
	}}

	d := newTestNotifier().BuildDigest(sampleAlerts(), expiring)

	assert.Equal(t, "Inventory alert: 1 critical, 0 low, 1 reorder, 1 expiring", d.Subject)
	assert.Contains(t, d.Body, "[CRITICAL] Milk (PRD-1): Critical stock: Milk has only 1 left")
	assert.Contains(t, d.Body, "[EXPIRY] Milk batch BAT-1: 4 units expire 2 days ago")
	assert.Equal(t, generated, d.GeneratedAt)
}

func TestDispatchFansOutAndJoinsErrors(t *testing.T) {
	ok := &recordingTransport{name: "ok"}
	broken := &recordingTransport{name: "broken", err: errors.New("connection refused")}
	n := newTestNotifier(broken, ok)

	d, err := n.Dispatch(context.Background(), sampleAlerts(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: connection refused")
	assert.Len(t, ok.digests, 1, "a failing transport does not block the others")
	assert.Equal(t, d, ok.digests[0])
}

func TestDispatchSkipsEmptyDigest(t *testing.T) {
	tr := &recordingTransport{name: "ok"}
	d, err := newTestNotifier(tr).Dispatch(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.Empty(t, tr.digests)
}

func TestWebhookTransport(t *testing.T) {
	stub := &stubWebhook{}
	n := newTestNotifier(WebhookTransport{Client: stub})

	_, err := n.Dispatch(context.Background(), sampleAlerts(), nil)
	require.NoError(t, err)
	require.Len(t, stub.sent, 1)
	assert.Equal(t, sampleAlerts(), stub.sent[0].Alerts)
	assert.Equal(t, generated, stub.sent[0].SentAt)
}

func TestEmailPayload(t *testing.T) {
	d := newTestNotifier().BuildDigest(sampleAlerts(), nil)

	_, err := EmailPayload(config.EmailConfig{}, d)
	assert.ErrorIs(t, err, models.ErrValidation)

	msg, err := EmailPayload(config.EmailConfig{SMTPServer: "smtp.example.com", From: "stock@example.com", To: []string{"owner@example.com"}}, d)
	require.NoError(t, err)
	assert.Equal(t, d.Subject, msg.Subject)
	assert.Equal(t, []string{"owner@example.com"}, msg.To)
}
