package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nishadmahmud/apple-nation/internal/domain"
)

const maxResponseBytes = 10 << 20 // 10MB

// Client talks to the remote product API. Responses are normalized into the
// canonical Page shape before anything else sees them, and all calls go
// through a circuit breaker so a misbehaving upstream trips fast instead of
// piling up slow requests.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		logger:  logger,
	}
}

// CategoryPage fetches one page of one category's products.
func (c *Client) CategoryPage(ctx context.Context, categoryID string, page, pageSize int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(pageSize))
	endpoint := fmt.Sprintf("%s/categories/%s/products?%s", c.baseURL, url.PathEscape(categoryID), q.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	return normalizePage(body)
}

// ProductDetail fetches a single product by id.
func (c *Client) ProductDetail(ctx context.Context, id string) (*domain.Product, error) {
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success *bool          `json:"success"`
		Data    domain.Product `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode product detail: %w", err)
	}
	if resp.Success != nil && !*resp.Success {
		return nil, fmt.Errorf("api reported failure for product %s", id)
	}
	return &resp.Data, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog api request failed: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return nil, fmt.Errorf("catalog api returned status %d", res.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		return body, nil
	})
}
