// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledgerclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/blinklabs-io/hometto/symbol"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout         = 10 * time.Second
	DefaultCacheTTL        = 15 * time.Second
	DefaultMaxHistoryPages = 100
	DefaultHistoryPageSize = 10
)

// Client talks to a single Symbol REST node. It is safe for concurrent use.
type Client struct {
	logger          *slog.Logger
	network         *symbol.Network
	resty           *resty.Client
	limiter         *rate.Limiter
	cache           Cache
	cacheTTL        time.Duration
	cacheGens       sync.Map
	timeout         time.Duration
	maxHistoryPages int
	currencyMosaic  string
	transport       http.RoundTripper
	tracing         bool
	promRegistry    prometheus.Registerer
	metrics         clientMetrics
}

type ClientOption func(*Client)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout bounds every request to the node
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given
// burst. A zero rps disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithCache enables caching of balance and history responses
func WithCache(cache Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = cache
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithMaxHistoryPages caps how many pages a history sequence fetches
func WithMaxHistoryPages(pages int) ClientOption {
	return func(c *Client) {
		if pages > 0 {
			c.maxHistoryPages = pages
		}
	}
}

// WithCurrencyMosaic overrides the mosaic ID reported as balance
func WithCurrencyMosaic(mosaicID string) ClientOption {
	return func(c *Client) {
		if mosaicID != "" {
			c.currencyMosaic = strings.ToUpper(mosaicID)
		}
	}
}

// WithTransport sets the HTTP transport used for node requests
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithTracing wraps the transport with OpenTelemetry instrumentation
func WithTracing(enabled bool) ClientOption {
	return func(c *Client) {
		c.tracing = enabled
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) ClientOption {
	return func(c *Client) {
		c.promRegistry = registry
	}
}

// New creates a client for the node at nodeURL on the given network
func New(
	nodeURL string,
	network *symbol.Network,
	opts ...ClientOption,
) (*Client, error) {
	if nodeURL == "" {
		return nil, errors.New("node URL must not be empty")
	}
	if network == nil {
		return nil, symbol.ErrUnknownNetwork
	}
	c := &Client{
		network:         network,
		timeout:         DefaultTimeout,
		cacheTTL:        DefaultCacheTTL,
		maxHistoryPages: DefaultMaxHistoryPages,
		currencyMosaic:  network.CurrencyMosaicHex(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c.logger = c.logger.With("component", "ledgerclient")
	transport := c.transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if c.tracing {
		transport = otelhttp.NewTransport(transport)
	}
	c.resty = resty.New().
		SetBaseURL(strings.TrimRight(nodeURL, "/")).
		SetTransport(transport).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(&restyLogger{logger: c.logger})
	c.metrics.init(c.promRegistry)
	return c, nil
}

// Network returns the network the client signs and queries for
func (c *Client) Network() *symbol.Network {
	return c.network
}

// do runs a single request with the client timeout applied and maps the
// response to the package errors
func (c *Client) do(
	ctx context.Context,
	op string,
	method string,
	path string,
	build func(*resty.Request),
) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	resp, err := c.send(ctx, method, path, build)
	err = checkResponse(ctx, resp, err)
	c.metrics.observe(op, outcome(err), time.Since(start))
	if err != nil {
		c.logger.Debug(
			"node request failed",
			"op", op,
			"path", path,
			"error", err,
		)
	}
	return resp, err
}

func (c *Client) send(
	ctx context.Context,
	method string,
	path string,
	build func(*resty.Request),
) (*resty.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req := c.resty.R().SetContext(ctx)
	if build != nil {
		build(req)
	}
	return req.Execute(method, path)
}

func checkResponse(
	ctx context.Context,
	resp *resty.Response,
	err error,
) error {
	if err != nil {
		if isTimeout(ctx, err) {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrNodeUnreachable, err)
	}
	if resp.IsSuccess() {
		return nil
	}
	if rejected := parseNodeError(resp.StatusCode(), resp.Body()); rejected != nil {
		return rejected
	}
	return fmt.Errorf(
		"%w: unexpected status %d",
		ErrNodeUnreachable,
		resp.StatusCode(),
	)
}
