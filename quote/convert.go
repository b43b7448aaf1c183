package quote

// Convert returns the amount of currency to that equals in value amount units of currency from.
// Identity conversion returns amount untouched. A non-positive to price yields zero
func Convert(amount float64, from, to CanonicalQuote) float64 {
	if from.Currency == to.Currency {
		return amount
	}

	if to.Price <= 0 {
		return 0
	}

	return amount * from.Price / to.Price
}

// Rate returns how many units of to one unit of from is worth
func Rate(from, to CanonicalQuote) float64 {
	return Convert(1, from, to)
}

// AmountInReferenceUnit returns the value of amount units of the quoted currency in the reference unit
func AmountInReferenceUnit(amount float64, q CanonicalQuote) float64 {
	return amount * q.Price
}
