package repository

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"MarketBluff/internal/domain/models"
	"MarketBluff/pkg/util"
)

var errMalformed = errors.New("malformed cache entry")

var priceHeader = []string{"date", "high", "low", "close"}

func encodePrices(series models.PriceSeries) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(priceHeader); err != nil {
		return nil, err
	}
	for _, b := range series {
		row := []string{
			util.FormatDate(b.Date),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodePrices(data []byte) (models.PriceSeries, error) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if len(rows) == 0 || !sameHeader(rows[0], priceHeader) {
		return nil, fmt.Errorf("%w: missing price header", errMalformed)
	}

	bars := make([]models.Bar, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(priceHeader) {
			return nil, fmt.Errorf("%w: row %d has %d fields", errMalformed, i+1, len(row))
		}
		date, err := util.ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", errMalformed, i+1, err)
		}
		var vals [3]float64
		for j := range vals {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", errMalformed, i+1, err)
			}
			vals[j] = v
		}
		bars = append(bars, models.Bar{Date: date, High: vals[0], Low: vals[1], Close: vals[2]})
	}
	return models.Sanitize(bars), nil
}

// encodeTickerList writes the ticker,as_of layout shared by the live cache
// and the bundled snapshot.
func encodeTickerList(tickers []string, asOf time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ticker", "as_of"}); err != nil {
		return nil, err
	}
	stamp := util.FormatDate(asOf)
	for _, t := range tickers {
		if err := w.Write([]string{t, stamp}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// decodeTickerList reads a CSV with a ticker column and an optional as_of
// column. asOf is taken from the first row and is nil when absent or
// unparseable.
func decodeTickerList(data []byte) (tickers []string, asOf *time.Time, err error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%w: no rows", errMalformed)
	}

	tickerCol, asOfCol := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "ticker":
			tickerCol = i
		case "as_of":
			asOfCol = i
		}
	}
	if tickerCol < 0 {
		return nil, nil, fmt.Errorf("%w: missing ticker column", errMalformed)
	}

	for _, row := range rows[1:] {
		if tickerCol < len(row) {
			if t := strings.TrimSpace(row[tickerCol]); t != "" {
				tickers = append(tickers, t)
			}
		}
	}
	if asOfCol >= 0 && asOfCol < len(rows[1]) {
		if d, err := util.ParseDate(strings.TrimSpace(rows[1][asOfCol])); err == nil {
			asOf = &d
		}
	}
	if len(tickers) == 0 {
		return nil, nil, fmt.Errorf("%w: no tickers", errMalformed)
	}
	return tickers, asOf, nil
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if !strings.EqualFold(strings.TrimSpace(got[i]), want[i]) {
			return false
		}
	}
	return true
}
