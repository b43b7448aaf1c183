package quote

// Reconcile collapses raw observations into one canonical quote per currency code. Records without a valid
// price are skipped. The latest observation wins; on equal timestamps the record that comes later in the input
// wins. The result follows the order in which codes were first accepted
func Reconcile(raw []RawQuote) []CanonicalQuote {
	latest := make(map[string]RawQuote, len(raw))
	order := make([]string, 0, len(raw))

	for _, q := range raw {
		if !q.Valid() {
			continue
		}

		curr, ok := latest[q.Currency]
		if !ok {
			order = append(order, q.Currency)
		}

		if !ok || !q.ObservedAt.Before(curr.ObservedAt) {
			latest[q.Currency] = q
		}
	}

	list := make([]CanonicalQuote, 0, len(order))
	for _, code := range order {
		q := latest[code]
		list = append(list, CanonicalQuote{
			Currency: q.Currency,
			Price:    q.Price,
			IconRef:  IconRef(q.Currency),
		})
	}

	return list
}

// Dropped counts the records Reconcile skips as invalid
func Dropped(raw []RawQuote) int {
	n := 0
	for _, q := range raw {
		if !q.Valid() {
			n++
		}
	}

	return n
}
