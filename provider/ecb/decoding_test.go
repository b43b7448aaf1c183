package ecb

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const testXMLBody = `<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<gesmes:Sender>
		<gesmes:name>European Central Bank</gesmes:name>
	</gesmes:Sender>
	<Cube>
		<Cube time="2021-06-18">
			<Cube currency="USD" rate="1.1898"/>
			<Cube currency="JPY" rate="131.12"/>
			<Cube currency="XYZ" rate="2.5"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

const testCSVBody = "Date, USD, JPY, XYZ, HRK, \n18 June 2021, 1.1898, 131.12, 2.5, N/A, "

func collect(t *testing.T, d decodeFunc, b []byte) ([]euroLatestRates, error) {
	t.Helper()

	var out []euroLatestRates
	err := d(b, func(r euroLatestRates) error {
		out = append(out, r)
		return nil
	})

	return out, err
}

func allowUnexported() cmp.Option {
	return cmp.AllowUnexported(euroLatestRates{}, euroExchangeRate{})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	expected := []euroLatestRates{{
		time: time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC),
		rates: []euroExchangeRate{
			{code: "USD", rate: 1.1898},
			{code: "JPY", rate: 131.12},
		},
	}}

	testCases := []struct {
		name   string
		decode decodeFunc
		body   []byte
	}{
		{name: "test_xml", decode: decodeXML(), body: []byte(testXMLBody)},
		{name: "test_csv", decode: decodeCSV(), body: []byte(testCSVBody)},
		{name: "test_csv_zip", decode: decodeCSV(), body: zipped(t, "eurofxref.csv", testCSVBody)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := collect(t, tc.decode, tc.body)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			if diff := cmp.Diff(expected, got, allowUnexported()); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		decode decodeFunc
		body   []byte
		err    error
	}{
		{
			name:   "test_xml_syntax",
			decode: decodeXML(),
			body:   []byte(`<Cube><Cube time="2021-06-18"><Cube currency="USD" rate="1.1898"/></Cube>`),
			err:    errDecodeToken,
		},
		{
			name:   "test_xml_bad_rate",
			decode: decodeXML(),
			body:   []byte(`<Cube><Cube time="2021-06-18"><Cube currency="USD" rate="-1"/></Cube></Cube>`),
			err:    errAttributeNotValid,
		},
		{
			name:   "test_xml_bad_time",
			decode: decodeXML(),
			body:   []byte(`<Cube><Cube time="18.06.2021"><Cube currency="USD" rate="1.1"/></Cube></Cube>`),
			err:    errAttributeNotValid,
		},
		{
			name:   "test_csv_no_date_column",
			decode: decodeCSV(),
			body:   []byte("USD, JPY\n1.1898, 131.12"),
			err:    errAttributeNotValid,
		},
		{
			name:   "test_csv_bad_date",
			decode: decodeCSV(),
			body:   []byte("Date, USD\n2021-06-18, 1.1898"),
			err:    errAttributeNotValid,
		},
		{
			name:   "test_csv_broken_zip",
			decode: decodeCSV(),
			body:   append([]byte("PK\x03\x04"), []byte("garbage")...),
			err:    errDecodeToken,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := collect(t, tc.decode, tc.body)
			if diff := cmp.Diff(tc.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_MissingIterFunc(t *testing.T) {
	t.Parallel()

	for _, d := range []decodeFunc{decodeXML(), decodeCSV()} {
		if err := d([]byte(testCSVBody), nil); !errors.Is(err, errMissingIterFunc) {
			t.Errorf("expected %v, got %v", errMissingIterFunc, err)
		}
	}
}

func zipped(t *testing.T, name, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}

	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("zip write: %v", err)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	return buf.Bytes()
}
