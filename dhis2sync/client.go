package dhis2sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/sirupsen/logrus"
)

// ExportError carries the DHIS2 response for a failed upload. StatusCode
// is zero when no response arrived.
type ExportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("dhis2 export failed (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("dhis2 export failed: %v", e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Client posts dataValueSets uploads to DHIS2 with basic auth.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   *logrus.Logger
}

func NewClient(conf config.DHIS2Config) *Client {
	return &Client{
		baseURL:  strings.TrimRight(conf.APIURL, "/"),
		username: conf.Username,
		password: conf.Password,
		http:     &http.Client{Timeout: conf.HTTPTimeout},
		logger:   config.GetLogger(),
	}
}

// Export uploads one payload. Any non-2xx response is an ExportError;
// the caller decides whether the inspection stays eligible for retry.
func (c *Client) Export(ctx context.Context, payload *Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ExportError{Err: err}
	}

	endpoint := c.baseURL + "/api/dataValueSets?orgUnitIdScheme=name"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &ExportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return &ExportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ExportError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	c.logger.WithFields(logrus.Fields{
		"module": "dhis2sync",
		"status": resp.StatusCode,
		"values": len(payload.DataValues),
	}).Info("data value set uploaded")
	return nil
}
