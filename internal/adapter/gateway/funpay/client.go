// Package funpay is the client for the marketplace account API that owns
// the lots: read a lot's fields, write them back. A 404 from the API is
// the signal that the lot was deleted remotely.
package funpay

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tontt4/steamsync/internal/adapter/gateway/httpx"
	"github.com/tontt4/steamsync/internal/domain/listing"
)

type Client struct{ c *httpx.Client }

type Config struct {
	BaseURL string
	Token   string // account API key, sent as Authorization: Bearer
}

func New(cfg Config) *Client {
	opts := httpx.DefaultOptionsFromEnv()
	if cfg.Token != "" {
		opts.Headers = map[string]string{"Authorization": "Bearer " + cfg.Token}
	}
	return &Client{c: httpx.NewWith(cfg.BaseURL, opts)}
}

func (cl *Client) GetFields(ctx context.Context, id string) (listing.Fields, error) {
	var f listing.Fields
	err := cl.c.GetJSON(ctx, "/lots/"+id+"/fields", nil, &f)
	if err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return listing.Fields{}, fmt.Errorf("%w: lot %s", listing.ErrNotFound, id)
		}
		return listing.Fields{}, err
	}
	if f.ID == "" {
		f.ID = id
	}
	return f, nil
}

func (cl *Client) SaveFields(ctx context.Context, f listing.Fields) error {
	err := cl.c.PutJSON(ctx, "/lots/"+f.ID+"/fields", f, nil)
	if err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return fmt.Errorf("%w: lot %s", listing.ErrNotFound, f.ID)
		}
		return err
	}
	return nil
}
