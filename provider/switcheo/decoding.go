package switcheo

import (
	"errors"
	"strings"
	"time"

	"github.com/robotomize/swapkit/quote"
	"github.com/tidwall/gjson"
)

var errDecodeToken = errors.New("price list is not a json array")

const (
	fieldCurrency = "currency"
	fieldPrice    = "price"
	fieldDate     = "date"
)

// decodePrices reads a JSON array of {currency, date, price} objects. Elements that can not be read are skipped
// instead of failing the whole list. A missing or non-numeric price decodes to zero and is dropped later by
// reconciliation
func decodePrices(b []byte) ([]quote.RawQuote, error) {
	if !gjson.ValidBytes(b) {
		return nil, errDecodeToken
	}

	root := gjson.ParseBytes(b)
	if !root.IsArray() {
		return nil, errDecodeToken
	}

	list := make([]quote.RawQuote, 0, 64)
	root.ForEach(func(_, item gjson.Result) bool {
		q, ok := decodeItem(item)
		if ok {
			list = append(list, q)
		}

		return true
	})

	return list, nil
}

func decodeItem(item gjson.Result) (quote.RawQuote, bool) {
	if !item.IsObject() {
		return quote.RawQuote{}, false
	}

	ccy := item.Get(fieldCurrency)
	if ccy.Type != gjson.String {
		return quote.RawQuote{}, false
	}

	code := strings.TrimSpace(ccy.String())
	if code == "" {
		return quote.RawQuote{}, false
	}

	observedAt, err := parseDate(item.Get(fieldDate).String())
	if err != nil {
		return quote.RawQuote{}, false
	}

	var price float64
	if p := item.Get(fieldPrice); p.Type == gjson.Number {
		price = p.Float()
	}

	return quote.RawQuote{
		Currency:   code,
		Price:      price,
		ObservedAt: observedAt,
	}, true
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}

	return t.UTC(), nil
}
