package abe

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodePayment(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		wantPayer  string
		wantAmount string
		wantErr    bool
	}{
		{"plain", "Jane Doe,jane@x.com,150\n", "jane@x.com", "150", false},
		{"spaces and currency", "Jane Doe, jane@x.com, $1,234.50\n", "jane@x.com", "1234.50", false},
		{"quoted amount", `"Doe, Jane", jane@x.com, "$1,000"`, "jane@x.com", "1000", false},
		{"missing amount", "Jane Doe,jane@x.com\n", "", "", true},
		{"not a number", "Jane Doe,jane@x.com,free\n", "", "", true},
		{"zero", "Jane Doe,jane@x.com,0\n", "", "", true},
		{"negative refund", "Bob, b@x.com, -50\n", "", "", true},
		{"negative with currency", "Bob, b@x.com, \"-$1,000\"\n", "", "", true},
		{"empty", "", "", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := DecodePayment("p1", strings.NewReader(tc.input))
			if (err != nil) != tc.wantErr {
				t.Fatalf("DecodePayment() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrMalformedRecord) {
					t.Errorf("DecodePayment() error = %v, want an ErrMalformedRecord", err)
				}
				return
			}
			if p.ID != "p1" || p.Payer != tc.wantPayer || !p.Amount.Equal(D(tc.wantAmount)) {
				t.Errorf("DecodePayment() = %+v, want %s paying %s", p, tc.wantPayer, tc.wantAmount)
			}
		})
	}
}

func TestAttributions_EncodeDecode(t *testing.T) {
	attrs := Attributions{"b@x.com": D("0.05"), "a@x.com": D("0.95")}

	var buf bytes.Buffer
	if err := EncodeAttributions(&buf, attrs, 2); err != nil {
		t.Fatalf("EncodeAttributions() error = %v", err)
	}
	want := "a@x.com,95.00%\nb@x.com,5.00%\n"
	if buf.String() != want {
		t.Errorf("EncodeAttributions() = %q, want %q", buf.String(), want)
	}

	got, err := DecodeAttributions(&buf)
	if err != nil {
		t.Fatalf("DecodeAttributions() error = %v", err)
	}
	if !got.Equal(attrs) {
		t.Errorf("DecodeAttributions() = %v, want %v", got, attrs)
	}
}

func TestEncodeAttributions_KeepsSumAtPrecision(t *testing.T) {
	third := D("1").Div(D("3"))
	attrs := Attributions{"a": third, "b": third, "c": D("1").Sub(third).Sub(third)}

	var buf bytes.Buffer
	if err := EncodeAttributions(&buf, attrs, 2); err != nil {
		t.Fatalf("EncodeAttributions() error = %v", err)
	}
	got, err := DecodeAttributions(&buf)
	if err != nil {
		t.Fatalf("DecodeAttributions() error = %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("written table is not valid: %v", err)
	}
	if !got.Sum().Equal(D("1")) {
		t.Errorf("written table sums to %s, want exactly 1", got.Sum())
	}
}

func TestDecodeAttributions_Errors(t *testing.T) {
	for _, input := range []string{
		"a@x.com,50%\na@x.com,50%\n",
		"a@x.com\n",
		"a@x.com,lots\n",
	} {
		if _, err := DecodeAttributions(strings.NewReader(input)); !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("DecodeAttributions(%q) error = %v, want ErrMalformedRecord", input, err)
		}
	}
}

func TestTransactions_EncodeDecode(t *testing.T) {
	txs := []Transaction{
		{Payee: "a@x.com", Amount: D("142.5"), SourceID: "p1", Revision: "abc123", CreatedAt: fixedClock()},
		{Payee: "b@x.com", Amount: D("7.5"), SourceID: "p1", Revision: "abc123", CreatedAt: fixedClock()},
	}
	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		t.Fatalf("EncodeTransactions() error = %v", err)
	}
	got, err := DecodeTransactions(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}
	if len(got) != len(txs) {
		t.Fatalf("DecodeTransactions() returned %d transactions, want %d", len(got), len(txs))
	}
	for i := range txs {
		if got[i].Payee != txs[i].Payee || !got[i].Amount.Equal(txs[i].Amount) ||
			got[i].SourceID != txs[i].SourceID || got[i].Revision != txs[i].Revision ||
			!got[i].CreatedAt.Equal(txs[i].CreatedAt) {
			t.Errorf("transaction #%d = %+v, want %+v", i, got[i], txs[i])
		}
	}
}

func TestDecodeTransactions_LegacyTimestamp(t *testing.T) {
	input := "a@x.com,150,p1,abc123,2023-05-04 12:30:00.123456\n"
	got, err := DecodeTransactions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}
	want := time.Date(2023, time.May, 4, 12, 30, 0, 123456000, time.Local)
	if len(got) != 1 || !got[0].CreatedAt.Equal(want) {
		t.Errorf("DecodeTransactions() = %+v, want created at %v", got, want)
	}
}

func TestDecodeScalar(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		query   string
		want    string
		wantErr bool
	}{
		{"plain", "100\n", "", "100", false},
		{"currency", "$10,000.50\nignored\n", "", "10000.50", false},
		{"json number", `{"valuation": {"amount": 250000}}`, "$.valuation.amount", "250000", false},
		{"json string", `{"price": "$1,000"}`, "$.price", "1000", false},
		{"json list", `{"rounds": [{"price": 10}, {"price": 20}]}`, "$.rounds[-1:].price", "20", false},
		{"empty", "", "", "", true},
		{"not json", "price: 100", "$.price", "", true},
		{"not a number", `{"price": true}`, "$.price", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeScalar(strings.NewReader(tc.input), tc.query)
			if (err != nil) != tc.wantErr {
				t.Fatalf("decodeScalar() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && !got.Equal(D(tc.want)) {
				t.Errorf("decodeScalar() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestParsePercent(t *testing.T) {
	testCases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"12.50%", "0.125", false},
		{"100 %", "1", false},
		{"-10.00%", "-0.1", false},
		{"%", "", true},
		{"1-0%", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParsePercent(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParsePercent(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if err == nil && !got.Equal(D(tc.want)) {
				t.Errorf("ParsePercent(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestDecodeAttributions_NegativeShareIsCorrupt(t *testing.T) {
	attrs, err := DecodeAttributions(strings.NewReader("a@x.com,-10.00%\nb@x.com,110.00%\n"))
	if err != nil {
		t.Fatalf("DecodeAttributions() error = %v", err)
	}
	if !attrs["a@x.com"].Equal(D("-0.1")) {
		t.Errorf("share of a@x.com = %s, want -0.1", attrs["a@x.com"])
	}
	if err := attrs.Validate(); !errors.Is(err, ErrCorruptLedger) {
		t.Errorf("Validate() error = %v, want ErrCorruptLedger", err)
	}
}
