package ecb

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
)

const csvDateColumn = "Date"

var zipMagic = []byte("PK\x03\x04")

// decodeCSV returns the decoding function for the ECB csv feed. The feed is published as a zip archive with a
// single csv file, plain csv bodies are accepted as well
func decodeCSV() decodeFunc {
	return func(b []byte, iterFunc func(rates euroLatestRates) error) error {
		if iterFunc == nil {
			return errMissingIterFunc
		}

		if bytes.HasPrefix(b, zipMagic) {
			unpacked, err := unzipCSV(b)
			if err != nil {
				return fmt.Errorf("%w: %v", errDecodeToken, err)
			}
			b = unpacked
		}

		decoder := csv.NewReader(bytes.NewReader(b))
		decoder.FieldsPerRecord = -1
		idx := 0
		var header []string
	TokenLoop:
		for {
			line, err := decoder.Read()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break TokenLoop
				}

				var parseError *csv.ParseError
				if errors.As(err, &parseError) {
					return fmt.Errorf("%w: %v", errDecodeToken, parseError.Error())
				}

				return fmt.Errorf("csv decoder read: %w", err)
			}

			if idx == 0 {
				for n, column := range line {
					token := strings.Trim(column, " \t")
					if n == 0 && token != csvDateColumn {
						return errAttributeNotValid
					}
					header = append(header, token)
				}
				idx += 1
				continue TokenLoop
			}

			var dailyRate euroLatestRates

			for n, column := range line {
				token := strings.Trim(column, " \t")
				if token == "" || n >= len(header) {
					continue
				}

				if header[n] == csvDateColumn {
					t, err := time.Parse("02 January 2006", token)
					if err != nil {
						return fmt.Errorf("%w: %v", errAttributeNotValid, err)
					}

					dailyRate.time = t
					continue
				}

				code, ok := isoCode(header[n])
				if !ok {
					continue
				}

				// the feed marks currencies without a fixing as N/A
				r, err := strconv.ParseFloat(token, 64)
				if err != nil || r <= 0 {
					continue
				}

				dailyRate.rates = append(dailyRate.rates, euroExchangeRate{
					code: code,
					rate: r,
				})
			}

			if err := iterFunc(dailyRate); err != nil {
				return fmt.Errorf("handle func: %w", err)
			}
		}

		return nil
	}
}

func unzipCSV(b []byte) ([]byte, error) {
	archive, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("zip.NewReader: %w", err)
	}

	for _, f := range archive.File {
		if !strings.EqualFold(path.Ext(f.Name), ".csv") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}

		out, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}

		return out, nil
	}

	return nil, errors.New("csv file not found in archive")
}
