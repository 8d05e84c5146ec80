package keys

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
)

// Cloud exchange constants.
const (
	// DefaultBaseURL is the vendor's internal key-exchange endpoint.
	DefaultBaseURL = "https://l9ren7efdj.execute-api.us-east-1.amazonaws.com"

	// keyExchangePath is the communicate-key resource.
	keyExchangePath = "/developStage/keys/v1/communicate"

	// statusCodeOK is the application-level success code in the response body.
	statusCodeOK = 100

	// DefaultExchangeTimeout bounds one exchange round trip.
	DefaultExchangeTimeout = 15 * time.Second
)

// Exchange errors.
var (
	// ErrAuthFailed indicates the cloud rejected the account credentials
	// or refused to mint a key for the device.
	ErrAuthFailed = errors.New("cloud authentication failed")
)

// Exchanger obtains the communication key for a device. Implementations
// are expected to be called once per device lifetime.
type Exchanger interface {
	KeyFor(ctx context.Context, mac adv.MAC) (Key, error)
}

// TokenSource supplies a bearer token for the vendor cloud. The Cognito
// login flow that produces it is the caller's concern.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// CloudExchanger retrieves device communication keys from the vendor
// cloud. Safe for concurrent use.
type CloudExchanger struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

// NewCloudExchanger creates an exchanger against the default endpoint.
func NewCloudExchanger(tokens TokenSource) *CloudExchanger {
	return NewCloudExchangerWithURL(DefaultBaseURL, tokens)
}

// NewCloudExchangerWithURL creates an exchanger against a custom endpoint.
func NewCloudExchangerWithURL(baseURL string, tokens TokenSource) *CloudExchanger {
	return &CloudExchanger{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: DefaultExchangeTimeout},
	}
}

type keyExchangeRequest struct {
	DeviceMAC string `json:"device_mac"`
	KeyType   string `json:"keyType"`
}

type keyExchangeResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Body       struct {
		CommunicationKey struct {
			KeyID string `json:"keyId"`
			Key   string `json:"key"`
		} `json:"communicationKey"`
	} `json:"body"`
}

// KeyFor retrieves the user communication key for a device.
func (e *CloudExchanger) KeyFor(ctx context.Context, mac adv.MAC) (Key, error) {
	token, err := e.tokens.Token(ctx)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	payload, err := json.Marshal(keyExchangeRequest{
		DeviceMAC: cloudMAC(mac),
		KeyType:   "user",
	})
	if err != nil {
		return Key{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+keyExchangePath, bytes.NewReader(payload))
	if err != nil {
		return Key{}, err
	}
	req.Header.Set("authorization", token)
	req.Header.Set("content-type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return Key{}, fmt.Errorf("key exchange request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Key{}, fmt.Errorf("%w: HTTP %d", ErrAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Key{}, fmt.Errorf("key exchange failed: HTTP %d", resp.StatusCode)
	}

	var body keyExchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Key{}, fmt.Errorf("key exchange response malformed: %w", err)
	}
	if body.StatusCode != statusCodeOK {
		return Key{}, fmt.Errorf("%w: %s (%d)", ErrAuthFailed, body.Message, body.StatusCode)
	}

	return ParseHex(body.Body.CommunicationKey.KeyID, body.Body.CommunicationKey.Key)
}

// cloudMAC formats an address the way the key endpoint expects:
// uppercase hex, no separators.
func cloudMAC(mac adv.MAC) string {
	return strings.ToUpper(strings.ReplaceAll(mac.String(), ":", ""))
}

// Compile-time interface satisfaction check.
var _ Exchanger = (*CloudExchanger)(nil)
