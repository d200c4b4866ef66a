package natbank

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tontt4/steamsync/internal/adapter/gateway/httpx"
)

type CBR struct{ c *httpx.Client }

func NewCBR() *CBR { return NewCBRWithBaseURL("https://www.cbr.ru") }

func NewCBRWithBaseURL(base string) *CBR {
	return &CBR{c: httpx.NewWith(base, httpx.DefaultOptionsFromEnv())}
}

func (CBR) Name() string     { return "cbr" }
func (CBR) Currency() string { return "RUB" }

type valCurs struct {
	Valute []struct {
		CharCode string `xml:"CharCode"`
		Nominal  int    `xml:"Nominal"`
		Value    string `xml:"Value"` // decimal comma, e.g. "78,4230"
	} `xml:"Valute"`
}

// Fetch returns RUB per USD from the CBR daily XML quote list.
func (c *CBR) Fetch(ctx context.Context) (float64, error) {
	var v valCurs
	if err := c.c.GetXML(ctx, "/scripts/XML_daily.asp", nil, &v); err != nil {
		return 0, err
	}
	for _, it := range v.Valute {
		if !strings.EqualFold(it.CharCode, "USD") {
			continue
		}
		val, err := strconv.ParseFloat(strings.ReplaceAll(it.Value, ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("cbr: bad USD value %q: %w", it.Value, err)
		}
		nominal := it.Nominal
		if nominal <= 0 {
			nominal = 1
		}
		rate := val / float64(nominal)
		if rate <= 0 {
			return 0, fmt.Errorf("cbr: non-positive USD rate %v", rate)
		}
		return rate, nil
	}
	return 0, fmt.Errorf("cbr: USD not present in quote list")
}
