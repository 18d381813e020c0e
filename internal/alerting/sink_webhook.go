package alerting

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sipwatch/internal/types"
)

// HTTPDoer is the outbound HTTP surface the webhook sink needs. In
// production this is the external.BaseClient so delivery inherits circuit
// breaking and retries.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Signature header carried on every webhook delivery.
// Format: t=<unix>,v1=<hmac-sha256 hex of "{unix}.{payload}">.
const SignatureHeader = "X-Sipwatch-Signature"

// maxResponseBodyRead limits how much of a response body we read for error
// messages.
const maxResponseBodyRead = 4096

// Compile-time assertion that WebhookSink implements types.AlertSink.
var _ types.AlertSink = (*WebhookSink)(nil)

// WebhookSink POSTs alert records as JSON to a configured endpoint, signing
// each payload with HMAC-SHA256 so receivers can authenticate the sender.
type WebhookSink struct {
	client HTTPDoer
	url    string
	secret string
	clock  types.Clock
	logger types.Logger
}

// NewWebhookSink creates a WebhookSink delivering to the given URL. The
// secret may be empty, in which case the signature header is omitted.
func NewWebhookSink(client HTTPDoer, url, secret string, clock types.Clock, logger types.Logger) *WebhookSink {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &WebhookSink{
		client: client,
		url:    url,
		secret: secret,
		clock:  clock,
		logger: logger,
	}
}

// Type returns the sink type identifier.
func (s *WebhookSink) Type() types.SinkType { return types.SinkWebhook }

// Deliver serializes the alert record, signs it, and POSTs it to the
// endpoint. Any non-2xx response is a delivery failure.
func (s *WebhookSink) Deliver(ctx context.Context, rec *types.AlertRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("webhook sink: failed to marshal alert record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook sink: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		req.Header.Set(SignatureHeader, SignPayload(payload, s.secret, s.clock.Now()))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook sink: delivery to %s failed: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyRead))
		return fmt.Errorf("webhook sink: endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	s.logger.Info("alert webhook delivered",
		"alert_id", rec.ID,
		"status", resp.StatusCode,
	)
	return nil
}

// SignPayload generates the signature header value for a webhook payload.
// The signed content is "{unix_timestamp}.{payload}" using HMAC-SHA256;
// the returned value is "t=<unix>,v1=<hex>".
func SignPayload(payload []byte, secret string, now time.Time) string {
	timestamp := now.Unix()
	signedContent := fmt.Sprintf("%d.%s", timestamp, string(payload))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, computeHMAC(signedContent, secret))
}

// VerifySignature checks a payload against a signature header. Receivers
// use this to authenticate deliveries; it is also exercised in tests.
func VerifySignature(payload []byte, header, secret string) bool {
	var timestamp, v1 string
	for _, segment := range strings.Split(header, ",") {
		switch {
		case strings.HasPrefix(segment, "t="):
			timestamp = strings.TrimPrefix(segment, "t=")
		case strings.HasPrefix(segment, "v1="):
			v1 = strings.TrimPrefix(segment, "v1=")
		}
	}
	if timestamp == "" || v1 == "" {
		return false
	}

	signedContent := fmt.Sprintf("%s.%s", timestamp, string(payload))
	expected := computeHMAC(signedContent, secret)
	return hmac.Equal([]byte(v1), []byte(expected))
}

// computeHMAC computes the HMAC-SHA256 of content using the given key and
// returns it as a lowercase hex string.
func computeHMAC(content, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil))
}
