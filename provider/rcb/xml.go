package rcb

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/encoding/charmap"
)

var (
	errDecodeToken       = errors.New("decoding of the markup failed")
	errAttributeNotValid = errors.New("attr is not valid")
)

const dateLayout = "02.01.2006"

// decodeXML parses the daily rates document in streaming mode. Rows with unknown codes or unreadable values
// are skipped, every rate is normalized to a single unit of currency
func decodeXML(b []byte) (rubLatestRates, error) {
	var dailyRates rubLatestRates
	decoder := xml.NewDecoder(bytes.NewReader(b))
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "windows-1251":
			return charmap.Windows1251.NewDecoder().Reader(input), nil
		}

		return nil, fmt.Errorf("charset %s is not defined", charset)
	}

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return dailyRates, nil
			}

			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return dailyRates, fmt.Errorf("%w: %v", errDecodeToken, syntaxErr.Error())
			}

			return dailyRates, fmt.Errorf("decode token: %w", err)
		}

		tp, ok := token.(xml.StartElement)
		if !ok || tp.Name.Local != "ValCurs" {
			continue
		}

		var node xmlNode
		if err := decoder.DecodeElement(&node, &tp); err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return dailyRates, fmt.Errorf("%w: %v", errDecodeToken, syntaxErr.Error())
			}

			return dailyRates, fmt.Errorf("decode element: %w", err)
		}

		dt, err := time.Parse(dateLayout, node.Date)
		if err != nil {
			return dailyRates, fmt.Errorf("%w: %v", errAttributeNotValid, err)
		}

		dailyRates.time = dt
		dailyRates.rates = make([]rubExchangeRate, 0, len(node.Rates))

		for _, r := range node.Rates {
			rate, ok := r.perUnit()
			if !ok {
				continue
			}

			unit, err := currency.ParseISO(strings.TrimSpace(r.Code))
			if err != nil {
				continue
			}

			dailyRates.rates = append(dailyRates.rates, rubExchangeRate{code: unit.String(), rate: rate})
		}
	}
}

type xmlCcyRate struct {
	Code    string `xml:"CharCode"`
	Nominal string `xml:"Nominal"`
	Value   string `xml:"Value"`
}

// perUnit returns the RUB value of a single unit, values use a decimal comma
func (r xmlCcyRate) perUnit() (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(r.Value), ",", ".", 1), 64)
	if err != nil || v <= 0 {
		return 0, false
	}

	nominal := 1.0
	if s := strings.TrimSpace(r.Nominal); s != "" {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		nominal = n
	}

	return v / nominal, true
}

type xmlNode struct {
	Date  string       `xml:"Date,attr"`
	Rates []xmlCcyRate `xml:"Valute"`
}
