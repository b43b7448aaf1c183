package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/robotomize/swapkit"
	"github.com/robotomize/swapkit/format"
	"github.com/robotomize/swapkit/internal/hashio"
	"github.com/robotomize/swapkit/internal/logging"
	"github.com/robotomize/swapkit/quote"
)

const referenceFractionDigits = 2

type quoteItem struct {
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
	IconURL  string  `json:"iconUrl"`
}

type sourceItem struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Received int    `json:"received"`
	Error    string `json:"error,omitempty"`
}

type quotesResponse struct {
	Quotes   []quoteItem  `json:"quotes"`
	Received int          `json:"received"`
	Dropped  int          `json:"dropped"`
	Sources  []sourceItem `json:"sources"`
}

type convertResponse struct {
	From                       string       `json:"from"`
	To                         string       `json:"to"`
	Value                      float64      `json:"value"`
	Rate                       float64      `json:"rate"`
	Amount                     float64      `json:"amount"`
	AmountFormatted            string       `json:"amountFormatted"`
	AmountInReference          float64      `json:"amountInReference"`
	AmountInReferenceFormatted string       `json:"amountInReferenceFormatted"`
	Sources                    []sourceItem `json:"sources"`
	Error                      string       `json:"error,omitempty"`
}

type handler struct {
	swapper swapkit.Swapper
}

func (h *handler) quotes(w http.ResponseWriter, r *http.Request) {
	latest := h.swapper.GetLatest(r.Context())
	if !latest.OK() {
		logging.FromContext(r.Context()).Warnw("no source answered", "error", latest.Err())
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "quotes are unavailable"})
		return
	}

	list := make([]quote.CanonicalQuote, len(latest.Result))
	copy(list, latest.Result)
	format.SortByCode(list)

	resp := quotesResponse{
		Quotes:   make([]quoteItem, 0, len(list)),
		Received: latest.Received,
		Dropped:  latest.Dropped,
		Sources:  sourceItems(latest.Info),
	}

	for _, q := range list {
		resp.Quotes = append(resp.Quotes, quoteItem{Currency: q.Currency, Price: q.Price, IconURL: q.IconRef})
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	etag, err := hashio.ETag(bytes.NewReader(body))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("ETag", etag)
	if hashio.Match(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *handler) convert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to := strings.TrimSpace(query.Get("from")), strings.TrimSpace(query.Get("to"))
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from and to are required"})
		return
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(query.Get("amount")), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount is not a number"})
		return
	}

	conv, err := h.swapper.Convert(r.Context(), swapkit.ConvOpt{From: from, To: to, Value: value})
	if err != nil {
		if errors.Is(err, swapkit.ErrCurrencyNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}

		if errors.Is(err, swapkit.ErrUnavailable) {
			logging.FromContext(r.Context()).Warnw("no source answered", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "quotes are unavailable"})
			return
		}

		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	resp := convertResponse{
		From:                       conv.From.Currency,
		To:                         conv.To.Currency,
		Value:                      conv.Value,
		Rate:                       conv.Rate,
		Amount:                     conv.Amount,
		AmountFormatted:            format.Amount(conv.Amount, format.DefaultFractionDigits),
		AmountInReference:          conv.AmountInReference,
		AmountInReferenceFormatted: format.Amount(conv.AmountInReference, referenceFractionDigits),
		Sources:                    sourceItems(conv.Info),
	}

	if err := h.swapper.CheckSwap(conv); err != nil {
		resp.Error = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func sourceItems(info []swapkit.SourceInfo) []sourceItem {
	list := make([]sourceItem, 0, len(info))
	for _, i := range info {
		list = append(list, sourceItem{
			Name:     i.Name,
			Status:   i.Status.String(),
			Received: i.Received,
			Error:    i.ErrorMessage,
		})
	}

	return list
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
