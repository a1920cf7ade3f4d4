// internal/adapters/itaka/client.go
package itaka

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tour_dataset/internal/adapters/observability"
	"tour_dataset/internal/domain"
)

//go:embed gql/*.gql
var queries embed.FS

func mustQuery(name string) string {
	b, err := queries.ReadFile("gql/" + name + ".gql")
	if err != nil {
		panic(err)
	}
	return string(b)
}

var (
	queryDestinations     = mustQuery("get_destinations")
	queryRates            = mustQuery("get_rates")
	queryTransportDetails = mustQuery("get_transport_details")
	queryProductContent   = mustQuery("get_product_content")
)

var (
	ErrServer  = errors.New("itaka: server error")
	ErrGraphQL = errors.New("itaka: graphql error")
	ErrNoData  = errors.New("itaka: response without data")
)

type Options struct {
	RPS      int
	MaxTries int
	PageSize int
	// RetryBase scales the linear backoff: attempt n waits RetryBase*(1+2n).
	RetryBase time.Duration
	// Params are the rate params sent with every query.
	Params map[string]any
}

type Client struct {
	url      string
	hc       *http.Client
	rl       *rate.Limiter
	maxTries int
	pageSize int
	base     time.Duration
	params   map[string]any
}

func New(url string, o Options) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("GraphQL URL is required")
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.MaxTries <= 0 {
		o.MaxTries = 5
	}
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	if o.RetryBase <= 0 {
		o.RetryBase = time.Second
	}
	if o.Params == nil {
		o.Params = map[string]any{}
	}
	return &Client{
		url:      url,
		hc:       &http.Client{Timeout: 30 * time.Second},
		rl:       rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		maxTries: o.MaxTries,
		pageSize: o.PageSize,
		base:     o.RetryBase,
		params:   o.Params,
	}, nil
}

// ---- Public API ----

// FetchRaw downloads everything the assembler needs: destination regions,
// every rate page and, per rate, its transport details and product content.
// Rates without side data keep a null entry.
func (c *Client) FetchRaw(ctx context.Context) (domain.RawDataset, error) {
	regions, err := c.DestinationRegions(ctx)
	if err != nil {
		return domain.RawDataset{}, fmt.Errorf("destination regions: %w", err)
	}
	rates, err := c.Rates(ctx)
	if err != nil {
		return domain.RawDataset{}, fmt.Errorf("rates: %w", err)
	}

	raw := domain.RawDataset{
		DestinationRegions: regions,
		Rates:              rates,
		TransportDetails:   make(map[string][]map[string]any, len(rates)),
		AllProductContent:  make(map[string]map[string]any, len(rates)),
	}
	for i, r := range rates {
		id := idOf(r["id"])
		log.Info().Int("rate", i+1).Int("of", len(rates)).Str("id", id).Msg("fetching rate details")

		segments, err := c.TransportDetails(ctx, id)
		if err != nil {
			return domain.RawDataset{}, fmt.Errorf("transport details %s: %w", id, err)
		}
		if segments == nil {
			log.Warn().Str("id", id).Msg("transport details unavailable")
		}
		raw.TransportDetails[id] = segments

		supplierID := idOf(r["supplierObjectId"])
		content, err := c.ProductContent(ctx, supplierID)
		if err != nil {
			return domain.RawDataset{}, fmt.Errorf("product content %s: %w", supplierID, err)
		}
		if content == nil {
			log.Warn().Str("supplier_object_id", supplierID).Msg("product content unavailable")
		}
		raw.AllProductContent[id] = content
	}
	return raw, nil
}

func (c *Client) DestinationRegions(ctx context.Context) ([]map[string]any, error) {
	var out struct {
		Properties struct {
			DestinationRegions []map[string]any `json:"destinationRegions"`
		} `json:"properties"`
	}
	vars := map[string]any{"rateParams": c.params}
	if err := c.query(ctx, "GetDestinations", queryDestinations, vars, &out); err != nil {
		return nil, err
	}
	return out.Properties.DestinationRegions, nil
}

// Rates pages through the offer list until ratesCount is reached or the
// API returns an empty page.
func (c *Client) Rates(ctx context.Context) ([]map[string]any, error) {
	rates := []map[string]any{}
	total := 1
	for page := 0; len(rates) < total; page++ {
		var out struct {
			Rates struct {
				RatesCount int              `json:"ratesCount"`
				List       []map[string]any `json:"list"`
			} `json:"rates"`
		}
		vars := map[string]any{
			"rateParams": c.params,
			"skip":       page * c.pageSize,
			"take":       c.pageSize,
			"order":      "popularity",
		}
		if err := c.query(ctx, "GetRates", queryRates, vars, &out); err != nil {
			return nil, err
		}
		total = out.Rates.RatesCount
		if len(out.Rates.List) == 0 {
			break
		}
		rates = append(rates, out.Rates.List...)
		log.Info().Int("fetched", len(rates)).Int("total", total).Msg("rates page fetched")
	}
	return rates, nil
}

// TransportDetails returns the detailed segments of a rate, or nil when
// the API has none.
func (c *Client) TransportDetails(ctx context.Context, id string) ([]map[string]any, error) {
	var out struct {
		Rate *struct {
			Segments []map[string]any `json:"segments"`
		} `json:"rate"`
	}
	if err := c.query(ctx, "GetTransportDetails", queryTransportDetails, c.withParams("id", id), &out); err != nil {
		return nil, err
	}
	if out.Rate == nil {
		return nil, nil
	}
	return out.Rate.Segments, nil
}

// ProductContent returns the descriptive content of an offer, or nil when
// the API has none.
func (c *Client) ProductContent(ctx context.Context, supplierObjectID string) (map[string]any, error) {
	var out struct {
		Content *struct {
			NewContent map[string]any `json:"newContent"`
		} `json:"content"`
	}
	vars := c.withParams("supplierObjectId", supplierObjectID)
	if err := c.query(ctx, "GetProductContent", queryProductContent, vars, &out); err != nil {
		return nil, err
	}
	if out.Content == nil {
		return nil, nil
	}
	return out.Content.NewContent, nil
}

// ---- Internals ----

type gqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

func (c *Client) withParams(k string, v any) map[string]any {
	vars := make(map[string]any, len(c.params)+1)
	for pk, pv := range c.params {
		vars[pk] = pv
	}
	vars[k] = v
	return vars
}

// query posts one GraphQL operation and decodes its data into out.
func (c *Client) query(ctx context.Context, op, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{OperationName: op, Query: query, Variables: vars})
	if err != nil {
		return err
	}
	b, err := c.post(ctx, op, body)
	if err != nil {
		return err
	}

	var resp gqlResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return fmt.Errorf("decode %s: %w", op, err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("%w: %s: %s", ErrGraphQL, op, strings.Join(msgs, "; "))
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return fmt.Errorf("%w: %s", ErrNoData, op)
	}
	return json.Unmarshal(resp.Data, out)
}

// post performs a POST, taking a limiter token for every attempt. Transient
// 5xx and network failures are retried up to maxTries with a linearly growing
// pause; 4xx is final.
func (c *Client) post(ctx context.Context, op string, body []byte) ([]byte, error) {
	var lastErr error
	for i := 0; i < c.maxTries; i++ {
		last := i+1 >= c.maxTries

		if err := c.rl.Wait(ctx); err != nil {
			return nil, err
		}

		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "tour-dataset/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			observability.ObserveExternal("itaka", op, 0, time.Since(start))
			log.Warn().Err(err).Str("op", op).Str("kind", observability.LabelErr(err)).Int("try", i+1).Msg("graphql request failed")
			lastErr = err
			if !last && sleepCtx(ctx, c.backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}

		b, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		observability.ObserveExternal("itaka", op, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				return nil, readErr
			}
			return b, nil

		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: %s returned %d", ErrServer, op, resp.StatusCode)
			log.Error().Str("op", op).Int("status", resp.StatusCode).Int("try", i+1).Msg("graphql request failed")
			if !last && sleepCtx(ctx, c.backoff(i)) {
				log.Warn().Str("op", op).Msg("retrying request")
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			return nil, fmt.Errorf("%s: bad status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(truncate(b, 4096))))
		}
	}

	return nil, lastErr
}

func (c *Client) backoff(i int) time.Duration {
	return c.base * time.Duration(1+2*i)
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

func idOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
