// Package webhook is the thin outbound relay the notification outbox
// delivers through. The outbox only depends on the Send signature; the far
// side (mail bridge, chat relay, Google Calendar glue) is someone else's
// problem.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

type DeliveryResult struct {
	OK     bool   `json:"ok"`
	ID     string `json:"id,omitempty"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

type DeliveryClient interface {
	Send(url string, payload any) (*DeliveryResult, error)
}

type Client struct {
	http *http.Client
}

// InitClient builds the relay client. DELIVERY_TIMEOUT_SECONDS bounds every
// delivery attempt so a slow relay cannot stall the caller.
func InitClient() *Client {
	timeout := defaultTimeout
	if raw := os.Getenv("DELIVERY_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

func (c *Client) Send(url string, payload any) (*DeliveryResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		// timeouts land here, the caller records them as a failed delivery
		return &DeliveryResult{OK: false, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	result := &DeliveryResult{Status: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Error = fmt.Sprintf("relay responded %d", resp.StatusCode)
		return result, nil
	}

	result.OK = true
	// the relay may hand back a delivery id; absence is not an error
	var ack struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && ack.ID != "" {
		result.ID = ack.ID
	}
	return result, nil
}
