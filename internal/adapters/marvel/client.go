// Package marvel is a paced, retrying client for the upstream catalog API
package marvel

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/metrics"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault   = "https://gateway.marvel.com/v1/public"
	defaultTimeout   = 15 * time.Second
	defaultUA        = "comicvault-sync"
	defaultMaxRetry  = 4
	defaultRetryBase = 500 * time.Millisecond
	defaultRPS       = 2.0

	// MaxLimit is the largest page the upstream serves
	MaxLimit = 100

	modifiedSinceLayout = "2006-01-02T15:04:05-0700"
)

// Options configures the Client
type Options struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	UserAgent  string
	Timeout    time.Duration

	// Retry config for transport failures, 429 and 5xx
	MaxRetries int
	RetryBase  time.Duration

	// RPS paces outgoing requests; zero uses the default, negative disables pacing
	RPS float64

	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
}

// Client fetches signed pages from the upstream API
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// NewClient creates a Client with defaults filled in
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.RPS == 0 {
		o.RPS = defaultRPS
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	var lim *rate.Limiter
	if o.RPS > 0 {
		lim = rate.NewLimiter(rate.Limit(o.RPS), 1)
	}
	return &Client{
		http:    hc,
		opts:    o,
		limiter: lim,
		log:     *logger.Named("marvel"),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Sign returns the request hash, hex md5 of ts + private key + public key
func Sign(ts, privateKey, publicKey string) string {
	sum := md5.Sum([]byte(ts + privateKey + publicKey))
	return hex.EncodeToString(sum[:])
}

// envelope is the upstream response wrapper; only results matter here
type envelope struct {
	Code int `json:"code"`
	Data struct {
		Offset  int               `json:"offset"`
		Limit   int               `json:"limit"`
		Total   int               `json:"total"`
		Count   int               `json:"count"`
		Results []json.RawMessage `json:"results"`
	} `json:"data"`
}

// FetchPage returns one page of raw records for resource. limit is clamped to 1..MaxLimit
func (c *Client) FetchPage(ctx context.Context, resource string, limit, offset int, modifiedSince *time.Time) ([]json.RawMessage, error) {
	limit = max(1, min(limit, MaxLimit))
	if offset < 0 {
		offset = 0
	}

	body, err := c.get(ctx, resource, func(q url.Values) {
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
		if modifiedSince != nil && !modifiedSince.IsZero() {
			q.Set("modifiedSince", modifiedSince.UTC().Format(modifiedSinceLayout))
		}
	})
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, perr.Decodingf(err, "marvel: decode %s page at offset %d", resource, offset)
	}
	return env.Data.Results, nil
}

// get issues a signed GET with pacing and retries and returns the body of a 200
func (c *Client) get(ctx context.Context, resource string, params func(url.Values)) ([]byte, error) {
	endpoint := c.opts.BaseURL + "/" + strings.TrimLeft(resource, "/")
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		q := url.Values{}
		params(q)
		ts := strconv.FormatInt(c.now().UnixMilli(), 10)
		q.Set("ts", ts)
		q.Set("apikey", c.opts.PublicKey)
		q.Set("hash", Sign(ts, c.opts.PrivateKey, c.opts.PublicKey))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "marvel: new request")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			metrics.UpstreamRequests.WithLabelValues(resource, "error").Inc()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return nil, perr.Transportf(err, "marvel: get %s", resource)
			}
			if err := c.backoffWait(ctx, attempts, "marvel transport error retrying"); err != nil {
				return nil, err
			}
			attempts++
			continue
		}

		metrics.UpstreamRequests.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()
		c.log.Debug().
			Str("resource", resource).
			Str("offset", q.Get("offset")).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("marvel http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return nil, perr.Transportf(err, "marvel: read %s body", resource)
			}
			return body, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			tail := readTail(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.UpstreamStatus(resp.StatusCode, tail, "marvel: get %s", resource)
			}
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			c.log.Warn().Int("status", resp.StatusCode).Dur("retry_in", wait).Int("attempt", attempts).Msg("marvel upstream busy retrying")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, perr.UpstreamStatus(resp.StatusCode, tail, "marvel: get %s", resource)
			}
			attempts++
			continue

		default:
			// 4xx other than 429: bad keys, bad params; retrying won't help
			return nil, perr.UpstreamStatus(resp.StatusCode, readTail(resp.Body), "marvel: get %s", resource)
		}
	}
}

func (c *Client) backoffWait(ctx context.Context, attempt int, msg string) error {
	back := c.backoff(attempt)
	c.log.Warn().Dur("retry_in", back).Int("attempt", attempt).Msg(msg)
	return c.sleep(ctx, back)
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase/time.Millisecond) << uint(attempt)
	ceiling := int64(30 * time.Second / time.Millisecond)
	if ms > ceiling || ms <= 0 {
		ms = ceiling
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
