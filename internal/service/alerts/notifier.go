package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/pkg/clients/webhook"
)

// Digest is one round of alerts ready to be delivered.
type Digest struct {
	Subject     string
	Body        string
	Alerts      []models.Alert
	Expiring    []models.ExpiringBatch
	GeneratedAt time.Time
}

// Empty reports whether there is nothing to send.
func (d Digest) Empty() bool {
	return len(d.Alerts) == 0 && len(d.Expiring) == 0
}

// Transport delivers a digest somewhere.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, d Digest) error
}

// Notifier builds digests and fans them out to every configured transport.
type Notifier struct {
	transports []Transport
	logger     *zap.Logger
	now        func() time.Time
}

// NewNotifier wires a notifier; it is valid with no transports.
func NewNotifier(logger *zap.Logger, transports ...Transport) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{transports: transports, logger: logger, now: time.Now}
}

// BuildDigest renders alerts and expiring batches into a subject and body.
func (n *Notifier) BuildDigest(alerts []models.Alert, expiring []models.ExpiringBatch) Digest {
	d := Digest{Alerts: alerts, Expiring: expiring, GeneratedAt: n.now()}

	counts := map[models.AlertLevel]int{}
	for _, a := range alerts {
		counts[a.Level]++
	}
	d.Subject = fmt.Sprintf("Inventory alert: %d critical, %d low, %d reorder",
		counts[models.AlertCritical], counts[models.AlertLow], counts[models.AlertReorder])
	if len(expiring) > 0 {
		d.Subject += fmt.Sprintf(", %d expiring", len(expiring))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock report generated %s\n", d.GeneratedAt.Format("2006-01-02 15:04"))
	for _, a := range alerts {
		fmt.Fprintf(&b, "[%s] %s (%s): %s\n", a.Level, a.Name, a.ProductID, a.Message)
	}
	for _, e := range expiring {
		when := fmt.Sprintf("in %d days", e.DaysLeft)
		if e.DaysLeft < 0 {
			when = fmt.Sprintf("%d days ago", -e.DaysLeft)
		}
		fmt.Fprintf(&b, "[EXPIRY] %s batch %s: %d units expire %s\n", e.ProductName, e.Batch.BatchID, e.Batch.Quantity, when)
	}
	d.Body = b.String()
	return d
}

// Dispatch builds a digest and hands it to every transport. Nothing is sent
// when the digest is empty. Transport failures are joined; one failing
// transport does not stop the others.
func (n *Notifier) Dispatch(ctx context.Context, alerts []models.Alert, expiring []models.ExpiringBatch) (Digest, error) {
	d := n.BuildDigest(alerts, expiring)
	if d.Empty() {
		n.logger.Debug("no alerts to dispatch")
		return d, nil
	}

	var errs []error
	for _, t := range n.transports {
		if err := t.Deliver(ctx, d); err != nil {
			n.logger.Error("alert delivery failed", zap.String("transport", t.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			continue
		}
		n.logger.Info("alerts delivered", zap.String("transport", t.Name()), zap.Int("alerts", len(alerts)))
	}
	return d, errors.Join(errs...)
}

// WebhookTransport posts digests through the webhook client.
type WebhookTransport struct {
	Client webhook.Client
}

func (WebhookTransport) Name() string { return "webhook" }

func (t WebhookTransport) Deliver(ctx context.Context, d Digest) error {
	return t.Client.Send(ctx, webhook.Message{
		Subject:  d.Subject,
		Text:     d.Body,
		Alerts:   d.Alerts,
		Expiring: d.Expiring,
		SentAt:   d.GeneratedAt,
	})
}

// EmailMessage is the payload contract handed to the external SMTP sender.
type EmailMessage struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// EmailPayload addresses a digest using the SMTP settings. The engine never
// dials the server itself.
func EmailPayload(cfg config.EmailConfig, d Digest) (EmailMessage, error) {
	if !cfg.Enabled() {
		return EmailMessage{}, models.InvalidField("email", "smtp server, sender and recipients are required")
	}
	return EmailMessage{
		From:    cfg.From,
		To:      append([]string(nil), cfg.To...),
		Subject: d.Subject,
		Body:    d.Body,
	}, nil
}
