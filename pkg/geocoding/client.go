// Package geocoding wraps the Google Geocoding JSON API used to confirm employee addresses.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Outcome classifies a lookup.
type Outcome int

const (
	// OutcomeError covers transport failures and error statuses from the API.
	OutcomeError Outcome = iota
	OutcomeFound
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "error"
	}
}

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
	maxBodyBytes      = 1 << 20
)

// Result carries the outcome plus the raw API status for logging.
type Result struct {
	Outcome          Outcome
	Status           string
	FormattedAddress string
}

type apiResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Client performs geocoding lookups bounded by a fixed timeout.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient constructs a Client. A zero timeout defaults to ten seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && strings.TrimSpace(c.apiKey) != ""
}

// Lookup resolves address. Transport failures return OutcomeError together with the error.
func (c *Client) Lookup(ctx context.Context, address string) (Result, error) {
	if !c.Enabled() {
		return Result{Outcome: OutcomeError}, fmt.Errorf("geocoding api key not configured")
	}

	query := url.Values{}
	query.Set("address", address)
	query.Set("key", c.apiKey)
	endpoint := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Outcome: OutcomeError}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeError}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Outcome: OutcomeError}, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return Result{Outcome: OutcomeError}, fmt.Errorf("decode geocoding response: %w", err)
	}

	result := Result{Status: payload.Status}
	switch {
	case payload.Status == statusOK && len(payload.Results) > 0:
		result.Outcome = OutcomeFound
		result.FormattedAddress = payload.Results[0].FormattedAddress
	case payload.Status == statusOK, payload.Status == statusZeroResults:
		result.Outcome = OutcomeNotFound
	default:
		result.Outcome = OutcomeError
	}
	return result, nil
}

// FormatAddress joins the parts as "house, barangay, city, province zip, country", skipping
// blanks.
func FormatAddress(house, barangay, city, province, zip, country string) string {
	var b strings.Builder
	appendPart := func(sep, part string) {
		part = strings.TrimSpace(part)
		if part == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(part)
	}
	appendPart(", ", house)
	appendPart(", ", barangay)
	appendPart(", ", city)
	appendPart(", ", province)
	appendPart(" ", zip)
	appendPart(", ", country)
	return b.String()
}
