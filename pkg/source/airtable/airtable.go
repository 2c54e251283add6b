package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.airtable.com"
	defaultPageSize = 100
	// the hosted API allows five requests per second per base
	defaultRequestsPerSecond = 5
	defaultMaxRetries        = 4
	defaultRetryDelay        = time.Second
)

// APIError is a non-2xx answer from the record store API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("airtable: status %d", e.StatusCode)
	}
	return fmt.Sprintf("airtable: status %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client reads tables from a hosted base over the REST API. It pages
// through each table with the offset cursor and throttles itself to the
// API's request budget. A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	baseID     string
	apiKey     string
	view       string
	pageSize   int
	maxRetries int
	retryDelay time.Duration
	tables     map[source.Table]string

	http    *http.Client
	limiter *rate.Limiter
}

// NewClientParams defines the configuration for NewClient.
//
// TableNames overrides the store-side name (or table id) used for a table;
// tables not listed are requested by their default name. View restricts
// every table to a named view.
type NewClientParams struct {
	BaseURL           string
	BaseID            string
	APIKey            string
	View              string
	PageSize          int
	RequestsPerSecond float64
	MaxRetries        int
	RetryDelay        time.Duration
	TableNames        map[source.Table]string
	HTTPClient        *http.Client
}

// NewClient creates a Client. BaseID and APIKey are required.
func NewClient(params NewClientParams) (*Client, error) {
	if params.BaseID == "" {
		return nil, errors.New("airtable: base id is required")
	}
	if params.APIKey == "" {
		return nil, errors.New("airtable: api key is required")
	}

	baseURL := strings.TrimSuffix(params.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageSize := params.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	rps := params.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := params.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	tables := make(map[source.Table]string, len(params.TableNames))
	for k, v := range params.TableNames {
		tables[k] = v
	}

	return &Client{
		baseURL:    baseURL,
		baseID:     params.BaseID,
		apiKey:     params.APIKey,
		view:       params.View,
		pageSize:   pageSize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		tables:     tables,
		http:       httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

type listResponse struct {
	Records []source.Record `json:"records"`
	Offset  string          `json:"offset"`
}

type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// FetchTable reads every page of table.
func (c *Client) FetchTable(ctx context.Context, table source.Table) ([]source.Record, error) {
	name := c.tableName(table)
	records := make([]source.Record, 0)
	offset := ""
	pages := 0

	for {
		page, err := util.RetryWithBackoff(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) (*listResponse, error) {
			return c.fetchPage(ctx, name, offset)
		})
		if err != nil {
			// pages are already retried; callers must not restart the table
			return nil, util.Permanent(fmt.Errorf("failed to fetch %s page %d: %w", table, pages+1, err))
		}
		pages++

		for _, r := range page.Records {
			if r.Fields == nil {
				r.Fields = map[string]any{}
			}
			records = append(records, r)
		}

		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	logger.Debug("[Airtable] Fetched table", "table", table, "records", len(records), "pages", pages)
	return records, nil
}

func (c *Client) tableName(table source.Table) string {
	if name, ok := c.tables[table]; ok && name != "" {
		return name
	}
	return string(table)
}

func (c *Client) fetchPage(ctx context.Context, table string, offset string) (*listResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	if c.view != "" {
		q.Set("view", c.view)
	}
	if offset != "" {
		q.Set("offset", offset)
	}
	endpoint := fmt.Sprintf("%s/v0/%s/%s?%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, util.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseError(resp.StatusCode, body)
		if apiErr.Retryable() {
			logger.Warn("[Airtable] Retrying request", "table", table, "status", resp.StatusCode)
			return nil, apiErr
		}
		return nil, util.Permanent(apiErr)
	}

	page := &listResponse{}
	if err := json.Unmarshal(body, page); err != nil {
		return nil, util.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return page, nil
}

// parseError understands both error shapes the API uses: an object with
// type and message, or a bare string.
func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return apiErr
	}

	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil {
		apiErr.Type = detailed.Type
		apiErr.Message = detailed.Message
		return apiErr
	}

	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		apiErr.Type = plain
	}
	return apiErr
}
