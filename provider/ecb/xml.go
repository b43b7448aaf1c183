package ecb

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

const xmlCubeElement = "Cube"

// decodeXML returns the decoding function. decodeXML parses xml in streaming mode and returns rates by date
func decodeXML() decodeFunc {
	return func(b []byte, iterFunc func(rates euroLatestRates) error) error {
		if iterFunc == nil {
			return errMissingIterFunc
		}
		decoder := xml.NewDecoder(bytes.NewReader(b))
	TokenLoop:
		for {
			token, err := decoder.Token()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break TokenLoop
				}

				var syntaxErr *xml.SyntaxError
				if errors.As(err, &syntaxErr) {
					return fmt.Errorf("%w: %v", errDecodeToken, syntaxErr.Error())
				}

				return fmt.Errorf("decode token: %w", err)
			}

			tp, ok := token.(xml.StartElement)
			if !ok || !isXMLCubeElement(tp.Name.Local) || !hasAttr(tp, "time") {
				continue TokenLoop
			}

			// Decode a piece of the tree into an XMLNode element, which represents the rates of the day
			var node XMLNode
			if err := decoder.DecodeElement(&node, &tp); err != nil {
				var syntaxErr *xml.SyntaxError
				switch {
				case errors.As(err, &syntaxErr):
					return fmt.Errorf("%w: %v", errDecodeToken, syntaxErr.Error())
				case errors.Is(err, errAttributeNotValid):
					return err
				default:
					return fmt.Errorf("decode element: %w", err)
				}
			}

			dailyRate := euroLatestRates{
				time:  time.Time(node.Time),
				rates: make([]euroExchangeRate, 0, len(node.Rates)),
			}

			for _, r := range node.Rates {
				code, ok := isoCode(r.Currency)
				if !ok {
					continue
				}

				dailyRate.rates = append(dailyRate.rates, euroExchangeRate{
					code: code,
					rate: r.Rate.Float64(),
				})
			}

			if err := iterFunc(dailyRate); err != nil {
				return fmt.Errorf("handle func: %w", err)
			}
		}

		return nil
	}
}

func isXMLCubeElement(name string) bool {
	return name == xmlCubeElement
}

func hasAttr(el xml.StartElement, name string) bool {
	for _, attr := range el.Attr {
		if attr.Name.Local == name {
			return true
		}
	}

	return false
}

type XMLAttrTime time.Time

func (x *XMLAttrTime) UnmarshalXMLAttr(attr xml.Attr) error {
	t, err := time.Parse("2006-01-02", attr.Value)
	if err != nil {
		return fmt.Errorf("%w: %v", errAttributeNotValid, err)
	}

	*x = XMLAttrTime(t)

	return nil
}

var _ xml.UnmarshalerAttr = (*XMLRateAttr)(nil)

type XMLRateAttr float64

func (i XMLRateAttr) Float64() float64 {
	return float64(i)
}

func (i *XMLRateAttr) UnmarshalXMLAttr(attr xml.Attr) error {
	rate, err := strconv.ParseFloat(attr.Value, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", errAttributeNotValid, err)
	}

	if rate <= 0 {
		return errAttributeNotValid
	}

	*i = XMLRateAttr(rate)

	return nil
}

type XMLNode struct {
	Time  XMLAttrTime `xml:"time,attr"`
	Rates []struct {
		Currency string      `xml:"currency,attr"`
		Rate     XMLRateAttr `xml:"rate,attr"`
	} `xml:"Cube"`
}
