package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/config"
)

// Gateway sends customer-facing messages through an external email/WhatsApp
// provider. Send failures are non-fatal; callers log and continue.
type Gateway interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

type httpGateway struct {
	cfg    config.NotificationConfig
	client *http.Client
	logger *zap.Logger
}

// NewGateway builds the default gateway. With no webhook URL configured
// messages are only logged, which keeps local development working without a
// provider account.
func NewGateway(cfg config.NotificationConfig, logger *zap.Logger) Gateway {
	return &httpGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type outboundMessage struct {
	From      string `json:"from"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (g *httpGateway) Send(ctx context.Context, recipient, subject, body string) error {
	g.logger.Info("sending notification",
		zap.String("recipient", recipient),
		zap.String("subject", subject))

	if strings.TrimSpace(g.cfg.WebhookURL) == "" {
		g.logger.Debug("no notification webhook configured; message logged only")
		return nil
	}

	payload, err := json.Marshal(outboundMessage{
		From:      g.cfg.EmailFrom,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		g.logger.Warn("notification provider rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("recipient", recipient))
	}
	return nil
}
