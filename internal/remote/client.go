package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Client talks to the sheet host. Transient failures (network errors, 429,
// 5xx) are retried with exponential backoff bounded by the caller's context;
// anything else is permanent.
type Client struct {
	baseURL    string
	token      string
	sheetID    string
	httpClient *http.Client
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		sheetID:    cfg.SheetID,
		httpClient: httpClient,
		maxRetries: 3,
		newBackOff: func() backoff.BackOff {
			policy := backoff.NewExponentialBackOff()
			policy.InitialInterval = 100 * time.Millisecond
			policy.MaxInterval = 2 * time.Second
			return policy
		},
	}
}

type cellChangeRequest struct {
	Column        int    `json:"column"`
	Row           int    `json:"row"`
	Value         string `json:"value"`
	CorrelationID string `json:"correlationId"`
}

type sheetResponse struct {
	Values [][]string `json:"values"`
}

// PushCell sends one single-cell delta to the host.
func (c *Client) PushCell(ctx context.Context, col, row int, value string) error {
	body := cellChangeRequest{
		Column:        col,
		Row:           row,
		Value:         value,
		CorrelationID: uuid.NewString(),
	}
	path := fmt.Sprintf("/v1/sheets/%s/cells", url.PathEscape(c.sheetID))
	return c.doJSON(ctx, http.MethodPut, path, body, nil)
}

// FetchSheet retrieves the full grid from the host.
func (c *Client) FetchSheet(ctx context.Context) ([][]string, error) {
	path := fmt.Sprintf("/v1/sheets/%s", url.PathEscape(c.sheetID))
	var out sheetResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

func (c *Client) doJSON(ctx context.Context, method, requestPath string, body, out any) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	operation := func() error {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bodyReader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err // retryable
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			if out == nil || len(payload) == 0 {
				return nil
			}
			if err := json.Unmarshal(payload, out); err != nil {
				return backoff.Permanent(err)
			}
			return nil
		}

		httpErr := &HTTPError{StatusCode: resp.StatusCode, Message: string(payload)}
		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
			return httpErr // retryable
		}
		return backoff.Permanent(httpErr)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
