package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"salon_backend/internal/metrics"
	"salon_backend/pkg/utils"

	"github.com/cenkalti/backoff/v4"
)

// ErrGatewayDisabled is returned when no gateway credentials are configured.
var ErrGatewayDisabled = errors.New("sms gateway is not configured")

// Notifier delivers a text message to a phone number.
type Notifier interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// HubtelConfig configures the Hubtel SMS client.
type HubtelConfig struct {
	APIURL       string
	ClientID     string
	ClientSecret string
	SenderID     string
	Timeout      time.Duration
	MaxRetries   int
	// InitialBackoff is the first retry delay. Zero means 500ms.
	InitialBackoff time.Duration
}

// HubtelClient sends SMS through the Hubtel messaging API.
type HubtelClient struct {
	cfg        HubtelConfig
	httpClient *http.Client
}

// NewHubtelClient creates a HubtelClient. httpClient may be nil.
func NewHubtelClient(cfg HubtelConfig, httpClient *http.Client) *HubtelClient {
	if cfg.SenderID == "" {
		cfg.SenderID = "SALON&SPA"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HubtelClient{cfg: cfg, httpClient: httpClient}
}

type hubtelMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Content string `json:"content"`
}

// gatewayError carries a non-2xx response from the gateway.
type gatewayError struct {
	StatusCode int
	Body       string
}

func (e *gatewayError) Error() string {
	return fmt.Sprintf("hubtel responded %d: %s", e.StatusCode, e.Body)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// SendSMS posts a message, retrying transport errors, 429 and 5xx responses
// with exponential backoff up to MaxRetries times.
func (h *HubtelClient) SendSMS(ctx context.Context, phone, message string) error {
	start := time.Now()
	if h.cfg.ClientID == "" || h.cfg.ClientSecret == "" {
		metrics.RecordSMS("disabled", 0)
		return ErrGatewayDisabled
	}

	to := FormatPhoneNumber(phone)
	payload, err := json.Marshal(hubtelMessage{From: h.cfg.SenderID, To: to, Content: message})
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	attempt := 0
	operation := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.APIURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build sms request: %w", err))
		}
		req.SetBasicAuth(h.cfg.ClientID, h.cfg.ClientSecret)
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			utils.LogWarn("Hubtel request failed", map[string]interface{}{"attempt": attempt, "error": err.Error()})
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		gwErr := &gatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if retryable(resp.StatusCode) {
			utils.LogWarn("Hubtel returned retryable status", map[string]interface{}{"attempt": attempt, "status": resp.StatusCode})
			return gwErr
		}
		return backoff.Permanent(gwErr)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = h.cfg.InitialBackoff
	policy.MaxInterval = 10 * h.cfg.InitialBackoff
	policy.MaxElapsedTime = 0 // bounded by retry count
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(h.cfg.MaxRetries)), ctx)

	if err := backoff.Retry(operation, b); err != nil {
		metrics.RecordSMS("failed", time.Since(start))
		utils.LogError(err, "Hubtel SMS delivery failed", map[string]interface{}{"to": to, "attempts": attempt})
		return fmt.Errorf("send sms to %s: %w", to, err)
	}

	metrics.RecordSMS("sent", time.Since(start))
	utils.LogInfo("SMS sent", map[string]interface{}{"to": to, "attempts": attempt})
	return nil
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhoneNumber normalises Ghanaian numbers to E.164. Nine digits get
// the +233 prefix, ten digits starting with 0 have the 0 replaced by +233,
// longer numbers get a leading +. Anything else is returned unchanged.
func FormatPhoneNumber(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 9:
		return "+233" + digits
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		return "+233" + digits[1:]
	case len(digits) > 10:
		return "+" + digits
	default:
		return phone
	}
}

// ThankYouMessage renders the post-visit message.
func ThankYouMessage(firstName string, serviceNames []string, amount float64) string {
	services := "service"
	switch len(serviceNames) {
	case 0:
	case 1:
		services = serviceNames[0]
	default:
		services = strings.Join(serviceNames[:len(serviceNames)-1], ", ") + " and " + serviceNames[len(serviceNames)-1]
	}
	return fmt.Sprintf("Dear %s, thank you for visiting our salon & spa today. "+
		"We appreciate your business and hope you enjoyed your %s. "+
		"Total: GHS %.2f. We look forward to seeing you again soon!", firstName, services, amount)
}
