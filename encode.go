package abe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// This file contains the codecs of the ledger files. They are plain CSV files
// meant to be human-readable and git-friendly, the ledger living in a git
// repository.

// legacyTimeLayout is the timestamp layout of transactions written by the
// first version of the tool.
const legacyTimeLayout = "2006-01-02 15:04:05.999999"

// DecodePayment decodes a payment record: a single CSV row "name, email, amount".
// id is the source id of the payment, and is used in error messages.
func DecodePayment(id string, r io.Reader) (Payment, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	row, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Payment{}, malformed("payment %q is empty", id)
	}
	if err != nil {
		return Payment{}, malformed("payment %q: %v", id, err)
	}
	if len(row) != 3 {
		return Payment{}, malformed("payment %q: expected 3 fields (name, email, amount), got %d", id, len(row))
	}
	amount, err := parseDecimal(row[2])
	if err != nil {
		return Payment{}, fmt.Errorf("payment %q: %w", id, err)
	}
	p := Payment{
		ID:     id,
		Name:   strings.TrimSpace(row[0]),
		Payer:  strings.TrimSpace(row[1]),
		Amount: amount,
	}
	return p, p.Validate()
}

// EncodePayment encodes a payment record.
func EncodePayment(w io.Writer, p Payment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{p.Name, p.Payer, p.Amount.String()}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// DecodeAttributions decodes an attribution table, one "email, percentage" row per holder.
//
// The table is not validated: see Attributions.Validate.
func DecodeAttributions(r io.Reader) (Attributions, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	attrs := make(Attributions)
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return attrs, nil
		}
		if err != nil {
			return nil, malformed("attributions: %v", err)
		}
		if len(row) != 2 {
			return nil, malformed("attributions line %d: expected 2 fields (email, percentage), got %d", line, len(row))
		}
		id := strings.TrimSpace(row[0])
		if _, exists := attrs[id]; exists {
			return nil, malformed("attributions line %d: %q is listed twice", line, id)
		}
		share, err := ParsePercent(row[1])
		if err != nil {
			return nil, fmt.Errorf("attributions line %d: %w", line, err)
		}
		attrs[id] = share
	}
}

// EncodeAttributions encodes an attribution table in identity order, shares
// written as percentages with places decimals.
//
// Shares are rounded first (see Attributions.Round) so that the written
// percentages still sum to 100%.
func EncodeAttributions(w io.Writer, attrs Attributions, places int32) error {
	rounded := attrs.Round(places + 2)
	cw := csv.NewWriter(w)
	for _, id := range rounded.Holders() {
		if err := cw.Write([]string{id, FormatPercent(rounded[id], places)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeTransactions decodes a transaction log, one
// "email, amount, payment_file, commit_hash, created_at" row per transaction.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	var txs []Transaction
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return txs, nil
		}
		if err != nil {
			return nil, malformed("transactions: %v", err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, malformed("transactions line %d: invalid amount %q", line, row[1])
		}
		createdAt, err := parseTimestamp(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, malformed("transactions line %d: invalid timestamp %q", line, row[4])
		}
		txs = append(txs, Transaction{
			Payee:     row[0],
			Amount:    amount,
			SourceID:  row[2],
			Revision:  row[3],
			CreatedAt: createdAt,
		})
	}
}

// decodeSourceIDs decodes only the source ids of a transaction log.
// Other fields are not parsed: recorded payments must be detected even if
// some old row is not readable anymore.
func decodeSourceIDs(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var ids []string
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, malformed("transactions: %v", err)
		}
		if len(row) < 3 {
			return nil, malformed("transactions line %d: no payment file", line)
		}
		ids = append(ids, row[2])
	}
}

// EncodeTransactions encodes transactions as log rows.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	cw := csv.NewWriter(w)
	for _, tx := range txs {
		row := []string{tx.Payee, tx.Amount.String(), tx.SourceID, tx.Revision, tx.CreatedAt.Format(time.RFC3339Nano)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(legacyTimeLayout, s, time.Local)
}
