package cae

import (
	"strings"
	"time"

	"github.com/robotomize/swapkit/internal/strutil"
	"golang.org/x/text/currency"
)

// aedLatestRates holds one publication day. Each rate is AED per 1 unit of currency
type aedLatestRates struct {
	time  time.Time
	rates []aedExchangeRate
}

type aedExchangeRate struct {
	code string
	rate float64
}

// names maps the display names used on the rates page to ISO 4217 codes
var names = map[string]string{
	"us dollar":             "USD",
	"argentine peso":        "ARS",
	"australian dollar":     "AUD",
	"bangladesh taka":       "BDT",
	"bahrani dinar":         "BHD",
	"bahraini dinar":        "BHD",
	"brunei dollar":         "BND",
	"brazilian real":        "BRL",
	"botswana pula":         "BWP",
	"belarus rouble":        "BYN",
	"canadian dollar":       "CAD",
	"swiss franc":           "CHF",
	"chilean peso":          "CLP",
	"chinese yuan":          "CNY",
	"colombian peso":        "COP",
	"czech koruna":          "CZK",
	"danish krone":          "DKK",
	"algerian dinar":        "DZD",
	"egypt pound":           "EGP",
	"euro":                  "EUR",
	"gb pound":              "GBP",
	"hongkong dollar":       "HKD",
	"hungarian forint":      "HUF",
	"indonesia rupiah":      "IDR",
	"indian rupee":          "INR",
	"iceland krona":         "ISK",
	"jordan dinar":          "JOD",
	"japanese yen":          "JPY",
	"kenya shilling":        "KES",
	"korean won":            "KRW",
	"kuwaiti dinar":         "KWD",
	"kazakhstan tenge":      "KZT",
	"lebanon pound":         "LBP",
	"sri lanka rupee":       "LKR",
	"moroccan dirham":       "MAD",
	"macedonia denar":       "MKD",
	"mexican peso":          "MXN",
	"malaysia ringgit":      "MYR",
	"nigerian naira":        "NGN",
	"norwegian krone":       "NOK",
	"newzealand dollar":     "NZD",
	"omani rial":            "OMR",
	"peru sol":              "PEN",
	"philippine piso":       "PHP",
	"pakistan rupee":        "PKR",
	"polish zloty":          "PLN",
	"qatari riyal":          "QAR",
	"serbian dinar":         "RSD",
	"russia rouble":         "RUB",
	"saudi riyal":           "SAR",
	"sudanese pound":        "SDG",
	"swedish krona":         "SEK",
	"singapore dollar":      "SGD",
	"thai baht":             "THB",
	"tunisian dinar":        "TND",
	"turkish lira":          "TRY",
	"trin tob dollar":       "TTD",
	"taiwan dollar":         "TWD",
	"tanzania shilling":     "TZS",
	"uganda shilling":       "UGX",
	"vietnam dong":          "VND",
	"south africa rand":     "ZAR",
	"zambian kwacha":        "ZMW",
	"azerbaijan manat":      "AZN",
	"bulgarian lev":         "BGN",
	"ethiopian birr":        "ETB",
	"iraqi dinar":           "IQD",
	"israeli new shekel":    "ILS",
	"libyan dinar":          "LYD",
	"mauritian rupee":       "MUR",
	"romanian leu":          "RON",
	"syrian pound":          "SYP",
	"turkmen manat":         "TMT",
	"uzbekistani som":       "UZS",
	"yemeni rial":           "YER",
	"chinese yuan offshore": "CNH",
}

// lookupCode resolves a rates page currency cell, either a display name or an ISO code
func lookupCode(cell string) (string, bool) {
	if code, ok := names[strutil.NormalizeName(cell)]; ok {
		return code, true
	}

	unit, err := currency.ParseISO(strings.TrimSpace(cell))
	if err != nil {
		return "", false
	}

	return unit.String(), true
}
