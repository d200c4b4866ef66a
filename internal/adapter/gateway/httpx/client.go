// Package httpx is the shared client for every upstream the agent talks
// to: JSON/XML GETs with bounded retries and backoff, one base URL per
// client instance.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// StatusError is a non-2xx response that survived the retry budget. Gateways
// inspect Code to classify (404 => lot gone, etc).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string { return fmt.Sprintf("http %d: %s", e.Code, e.Body) }

type Client struct {
	Base string
	HC   *http.Client
	opts Options
}

func New(base string) *Client { return NewWith(base, DefaultOptionsFromEnv()) }

func NewWith(base string, o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	return &Client{
		Base: base,
		HC: &http.Client{
			Timeout: o.Timeout,
			Transport: &http.Transport{
				DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				MaxIdleConns:    100,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		opts: o,
	}
}

func (c *Client) GetJSON(ctx context.Context, path string, params map[string]string, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (c *Client) GetXML(ctx context.Context, path string, params map[string]string, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	dec := xml.NewDecoder(bytes.NewReader(body))
	// national bank feeds come in windows-1251 and friends
	dec.CharsetReader = charsetReader
	return dec.Decode(v)
}

func (c *Client) PutJSON(ctx context.Context, path string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodPut, path, nil, payload, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil, "")
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, payload []byte, contentType string) ([]byte, error) {
	u := c.Base + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			return nil, err
		}
		if c.opts.UserAgent != "" {
			req.Header.Set("User-Agent", c.opts.UserAgent)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		for k, v := range c.opts.Headers {
			req.Header.Set(k, v)
		}

		res, err := c.HC.Do(req)
		if err == nil && res.StatusCode < 300 {
			b, rerr := io.ReadAll(res.Body)
			res.Body.Close()
			return b, rerr
		}

		status := 0
		retryAfter := ""
		if err == nil {
			status = res.StatusCode
			retryAfter = headerRetryAfter(res.Header)
			b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
			res.Body.Close()
			lastErr = &StatusError{Code: status, Body: string(b)}
		} else {
			lastErr = err
		}

		if attempt >= c.opts.Retries || !shouldRetry(status, err) {
			return nil, lastErr
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(computeBackoff(c.opts.BackoffMin, c.opts.BackoffMax, attempt, retryAfter)):
		}
	}
}
