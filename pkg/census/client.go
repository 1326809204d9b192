// Package census is a client for the Census Bureau's American Community
// Survey 5-year estimates API. It speaks the API's array-of-arrays JSON shape
// and decodes the annotation sentinels the Bureau uses in place of nulls.
package census

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.census.gov/data/2022/acs/acs5"

// zctaColumn is the geography column name the API returns for ZCTA queries.
const zctaColumn = "zip code tabulation area"

// naSentinels are the annotation values the ACS API emits for suppressed or
// inapplicable estimates.
var naSentinels = map[string]struct{}{
	"-66666666":  {},
	"-99999999":  {},
	"-88888888":  {},
	"-666666666": {},
}

// Client queries the ACS API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, for tests and vintage changes.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient builds an ACS client. The API key may be empty; the Bureau allows
// a small daily quota without one, so the limiter stays conservative.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(2, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Row is one geography's worth of estimates. Nil values are estimates the
// Bureau reported as null or as an annotation sentinel.
type Row struct {
	ZCTA   string
	Name   string
	Values map[string]*float64
}

// FetchZCTA requests the given variables for every ZCTA in the country and
// returns one row per ZCTA. The API does not support an "in state" clause for
// ZCTAs, so filtering to a study region happens on the caller's side.
func (c *Client) FetchZCTA(ctx context.Context, variables []string) ([]Row, error) {
	if len(variables) == 0 {
		return nil, eris.New("census: no variables requested")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "census: rate limit")
	}

	params := url.Values{
		"get": {"NAME," + strings.Join(variables, ",")},
		"for": {"zip code tabulation area:*"},
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "census: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "census: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("census: status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "census: read body")
	}

	rows, err := parseResponse(body, variables)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("census: fetched ZCTA estimates",
		zap.Int("rows", len(rows)), zap.Strings("variables", variables))
	return rows, nil
}

// parseResponse decodes the API's array-of-arrays payload: the first row is
// column headers, every later row is string-encoded values positionally
// matching the headers.
func parseResponse(body []byte, variables []string) ([]Row, error) {
	var raw [][]*string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "census: parse response")
	}
	if len(raw) < 1 {
		return nil, eris.New("census: empty response")
	}

	headers := raw[0]
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		if h != nil {
			col[*h] = i
		}
	}
	zctaIdx, ok := col[zctaColumn]
	if !ok {
		return nil, eris.Errorf("census: response has no %q column", zctaColumn)
	}
	for _, v := range variables {
		if _, ok := col[v]; !ok {
			return nil, eris.Errorf("census: response has no %s column", v)
		}
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, rec := range raw[1:] {
		if len(rec) != len(headers) {
			return nil, eris.Errorf("census: row has %d columns, want %d", len(rec), len(headers))
		}
		row := Row{Values: make(map[string]*float64, len(variables))}
		if s := rec[zctaIdx]; s != nil {
			row.ZCTA = *s
		}
		if i, ok := col["NAME"]; ok && rec[i] != nil {
			row.Name = *rec[i]
		}
		for _, v := range variables {
			row.Values[v] = decodeValue(rec[col[v]])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeValue turns one API cell into a nullable float. JSON nulls, blanks,
// unparseable strings, and annotation sentinels all decode to nil.
func decodeValue(s *string) *float64 {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	if _, na := naSentinels[t]; na {
		return nil
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil
	}
	return &v
}
