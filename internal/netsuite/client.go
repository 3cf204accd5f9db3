package netsuite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"supplier-portal/internal/config"

	"go.uber.org/zap"
)

const (
	// PageSize is the SuiteQL page size; NetSuite caps it at 1000.
	PageSize       = 1000
	RequestTimeout = 60 * time.Second
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("netsuite %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the ERP.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	signer  *OAuthSigner
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client from config. BaseURL defaults to the account's
// SuiteTalk REST host.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	ns := cfg.NetSuite
	baseURL := strings.TrimRight(ns.BaseURL, "/")
	if baseURL == "" && ns.AccountID != "" {
		host := strings.ToLower(strings.ReplaceAll(ns.AccountID, "_", "-"))
		baseURL = "https://" + host + ".suitetalk.api.netsuite.com/services/rest"
	}
	return NewClientWithSigner(baseURL, NewOAuthSigner(ns.AccountID, ns.ConsumerKey, ns.ConsumerSecret, ns.TokenID, ns.TokenSecret), logger)
}

func NewClientWithSigner(baseURL string, signer *OAuthSigner, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		http:    &http.Client{Timeout: RequestTimeout},
		logger:  logger,
	}
}

type queryPage struct {
	Items   []json.RawMessage `json:"items"`
	HasMore bool              `json:"hasMore"`
	Count   int               `json:"count"`
	Offset  int               `json:"offset"`
}

// Query runs a SuiteQL statement and returns every row across all pages.
func (c *Client) Query(ctx context.Context, q string) ([]json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"q": q})
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	offset := 0
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(PageSize))
		params.Set("offset", strconv.Itoa(offset))

		var page queryPage
		_, err := c.do(ctx, http.MethodPost, "/query/v1/suiteql", params, body, map[string]string{"Prefer": "transient"}, &page)
		if err != nil {
			return nil, err
		}

		rows = append(rows, page.Items...)
		if !page.HasMore || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	c.logger.Debug("SuiteQL query finished", zap.Int("rows", len(rows)))
	return rows, nil
}

// Querier is anything that can run SuiteQL; *Client is the production one.
type Querier interface {
	Query(ctx context.Context, q string) ([]json.RawMessage, error)
}

// QueryInto runs Query and decodes every row into T.
func QueryInto[T any](ctx context.Context, c Querier, q string) ([]T, error) {
	raw, err := c.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// GetRecord fetches /record/v1/{type}/{id} into out.
func (c *Client) GetRecord(ctx context.Context, recordType, id string, params url.Values, out interface{}) error {
	_, err := c.do(ctx, http.MethodGet, recordPath(recordType, id), params, nil, nil, out)
	return err
}

// PatchRecord sends a partial update for a record.
func (c *Client) PatchRecord(ctx context.Context, recordType, id string, fields interface{}) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPatch, recordPath(recordType, id), nil, body, nil, nil)
	return err
}

// CreateRecord posts a new record and returns the id taken from the Location header.
func (c *Client) CreateRecord(ctx context.Context, recordType string, fields interface{}) (string, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, recordPath(recordType, ""), nil, body, nil, nil)
	if err != nil {
		return "", err
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", nil
	}
	return path.Base(loc), nil
}

func recordPath(recordType, id string) string {
	p := "/record/v1/" + url.PathEscape(recordType)
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, p string, params url.Values, body []byte, headers map[string]string, out interface{}) (*http.Response, error) {
	endpoint := c.baseURL + p
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}

	auth, err := c.signer.Header(method, endpoint)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("read %s %s: %w", method, p, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        p,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, p, err)
		}
	}
	return resp, nil
}
