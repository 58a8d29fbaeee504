package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const bearerPrefix = "Bearer "

// Client fetches scenario rules from a remote rule service over HTTP.
// It implements Lookup for deployments where rules are managed elsewhere.
type Client struct {
	baseURL string
	http    *http.Client
	logger  Logger
}

// NewClient creates a rule service client. baseURL is the service root,
// e.g. "http://scenario-service:8084".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  noopLogger{},
	}
}

// SetLogger sets the client logger. A nil logger restores the no-op default.
func (c *Client) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// rulePayload mirrors the rule service wire format.
type rulePayload struct {
	ID               string `json:"id"`
	DeviceTypeID     string `json:"deviceTypeId"`
	WeatherCondition string `json:"weatherCondition"`
	ConditionValue   string `json:"conditionValue"`
	Operator         string `json:"operator"`
	NewStatus        string `json:"newStatus"`
}

// RulesForDeviceType fetches the rules bound to a device type from the
// remote service. The credential is forwarded as a bearer token; both raw
// tokens and full "Bearer ..." header values are accepted.
func (c *Client) RulesForDeviceType(ctx context.Context, deviceTypeID, credential string) ([]Rule, error) {
	endpoint := fmt.Sprintf("%s/scenarios?deviceTypeId=%s", c.baseURL, url.QueryEscape(deviceTypeID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		token := strings.TrimPrefix(credential, bearerPrefix)
		req.Header.Set("Authorization", bearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: rule service returned %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: rule service returned %d", ErrLookupFailed, resp.StatusCode)
	}

	var payload []rulePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrLookupFailed, err)
	}

	rules := make([]Rule, 0, len(payload))
	for _, p := range payload {
		rules = append(rules, Rule{
			ID:               p.ID,
			DeviceTypeID:     p.DeviceTypeID,
			WeatherCondition: p.WeatherCondition,
			ConditionValue:   p.ConditionValue,
			Operator:         p.Operator,
			NewStatus:        p.NewStatus,
		})
	}

	c.logger.Debug("fetched remote rules", "device_type", deviceTypeID, "count", len(rules))
	return rules, nil
}
