// Package natbank holds the currency-specific secondary rate sources used
// when the primary feed is down: the National Bank of Ukraine for UAH and
// the Central Bank of Russia for RUB.
package natbank

import (
	"context"
	"fmt"

	"github.com/tontt4/steamsync/internal/adapter/gateway/httpx"
)

type NBU struct{ c *httpx.Client }

func NewNBU() *NBU { return NewNBUWithBaseURL("https://bank.gov.ua") }

func NewNBUWithBaseURL(base string) *NBU {
	return &NBU{c: httpx.NewWith(base, httpx.DefaultOptionsFromEnv())}
}

func (NBU) Name() string     { return "nbu" }
func (NBU) Currency() string { return "UAH" }

type nbuRow struct {
	Rate float64 `json:"rate"` // UAH per 1 USD
	CC   string  `json:"cc"`
}

// Fetch returns UAH per USD from the NBU daily exchange endpoint.
func (n *NBU) Fetch(ctx context.Context) (float64, error) {
	var rows []nbuRow
	err := n.c.GetJSON(ctx, "/NBUStatService/v1/statdirectory/exchange",
		map[string]string{"valcode": "USD", "json": ""}, &rows)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		if r.Rate > 0 {
			return r.Rate, nil
		}
	}
	return 0, fmt.Errorf("nbu: no usable USD rate in response")
}
