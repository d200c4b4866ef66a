// Package openexchange is the primary rate source: one GET returns every
// currency's rate relative to USD.
package openexchange

import (
	"context"
	"fmt"

	"github.com/tontt4/steamsync/internal/adapter/gateway/httpx"
)

type Client struct{ c *httpx.Client }

func New() *Client { return NewWithBaseURL("https://api.exchangerate-api.com") }

func NewWithBaseURL(base string) *Client {
	return &Client{c: httpx.NewWith(base, httpx.DefaultOptionsFromEnv())}
}

func (Client) Name() string { return "exchangerate-api" }

type latest struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Ping satisfies the health pinger: one rates document fetch.
func (cl *Client) Ping(ctx context.Context) error {
	_, err := cl.FetchAll(ctx)
	return err
}

func (cl *Client) FetchAll(ctx context.Context) (map[string]float64, error) {
	var v latest
	if err := cl.c.GetJSON(ctx, "/v4/latest/USD", nil, &v); err != nil {
		return nil, err
	}
	if len(v.Rates) == 0 {
		return nil, fmt.Errorf("exchangerate-api: empty rates document")
	}
	out := make(map[string]float64, len(v.Rates))
	for cur, r := range v.Rates {
		if r > 0 {
			out[cur] = r
		}
	}
	return out, nil
}
