package cae

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/robotomize/swapkit/internal/strutil"
	"golang.org/x/net/html"
)

var (
	errParseAttrNotValid = errors.New("attr is not valid")
	errHTMLNotValid      = errors.New("html not valid")
)

const (
	dateSelector = "#ratesDatePicker > h3 > span > span"
	rowSelector  = "#ratesDateTable tbody tr"
	datePrefix   = "Date"
	dateLayout   = "02-01-2006"
)

// parseHTML extracts the publication date and the AED rates table. Rows with unknown currencies or unreadable
// rates are skipped
func parseHTML(b []byte) (aedLatestRates, error) {
	var dailyRates aedLatestRates
	root, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return dailyRates, fmt.Errorf("%w: html parse: %v", errHTMLNotValid, err)
	}

	doc := goquery.NewDocumentFromNode(root)

	date := strings.TrimSpace(doc.Find(dateSelector).First().Text())
	date = strings.TrimSpace(strings.TrimPrefix(date, datePrefix))
	if date == "" {
		return dailyRates, errParseAttrNotValid
	}

	dt, err := time.Parse(dateLayout, date)
	if err != nil {
		return dailyRates, fmt.Errorf("%w: %v", errParseAttrNotValid, err)
	}

	dailyRates.time = dt

	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		code, ok := lookupCode(cells.Eq(0).Text())
		if !ok {
			return
		}

		rate, err := strconv.ParseFloat(strutil.RemoveExtraSpaces(cells.Eq(1).Text()), 64)
		if err != nil || rate <= 0 {
			return
		}

		dailyRates.rates = append(dailyRates.rates, aedExchangeRate{
			code: code,
			rate: rate,
		})
	})

	return dailyRates, nil
}
