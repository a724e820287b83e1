package abe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

var _ Store = (*FileStore)(nil)

// Files and folders of a ledger directory.
const (
	PaymentsDir      = "payments"
	TransactionsFile = "transactions.txt"
	PriceFile        = "price.txt"
	ValuationFile    = "valuation.txt"
	AttributionsFile = "attributions.txt"
	PendingFile      = "pending.json"
)

// FileStore is a Store kept in a ledger directory:
//
//	payments/          one CSV file per payment, the file name is the source id.
//	transactions.txt   the transaction log.
//	price.txt          the investment threshold.
//	valuation.txt      the valuation.
//	attributions.txt   the attribution table.
//	pending.json       the pending investment, if any.
type FileStore struct {
	root           string
	percentPlaces  int32
	priceQuery     string
	valuationQuery string
	payments       *cache.Cache // parsed payments by id, payments are immutable.
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithPercentPlaces sets the number of decimals of the percentages written in
// the attribution file, 2 by default.
func WithPercentPlaces(places int32) FileStoreOption {
	return func(s *FileStore) { s.percentPlaces = places }
}

// WithPriceQuery reads the price file as a JSON document, query being the
// JSONPath of the price in it.
func WithPriceQuery(query string) FileStoreOption {
	return func(s *FileStore) { s.priceQuery = query }
}

// WithValuationQuery reads the valuation file as a JSON document, query being
// the JSONPath of the valuation in it.
func WithValuationQuery(query string) FileStoreOption {
	return func(s *FileStore) { s.valuationQuery = query }
}

// NewFileStore opens the ledger directory root.
func NewFileStore(root string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		root:          root,
		percentPlaces: 2,
		payments:      cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the ledger directory.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) path(name string) string { return filepath.Join(s.root, name) }

// PaymentIDs lists the payment files. Hidden files (like .gitkeep) are ignored.
func (s *FileStore) PaymentIDs() ([]string, error) {
	entries, err := os.ReadDir(s.path(PaymentsDir))
	if err != nil {
		return nil, fmt.Errorf("cannot list payments: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ids = append(ids, e.Name())
	}
	return ids, nil
}

func (s *FileStore) Payment(id string) (Payment, error) {
	if p, found := s.payments.Get(id); found {
		return p.(Payment), nil
	}
	f, err := os.Open(filepath.Join(s.path(PaymentsDir), id))
	if err != nil {
		return Payment{}, fmt.Errorf("cannot open payment %q: %w", id, err)
	}
	defer f.Close()

	p, err := DecodePayment(id, f)
	if err != nil {
		return Payment{}, err
	}
	s.payments.Set(id, p, cache.NoExpiration)
	return p, nil
}

// AddPayment deposits a new payment file. It fails if the id is already used.
func (s *FileStore) AddPayment(p Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	dir := s.path(PaymentsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create payments folder: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, p.ID), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot create payment %q: %w", p.ID, err)
	}
	if err := EncodePayment(f, p); err != nil {
		f.Close()
		return fmt.Errorf("cannot write payment %q: %w", p.ID, err)
	}
	return f.Close()
}

func (s *FileStore) Price() (decimal.Decimal, error) {
	return s.scalar(PriceFile, s.priceQuery)
}

func (s *FileStore) Valuation() (decimal.Decimal, error) {
	return s.scalar(ValuationFile, s.valuationQuery)
}

func (s *FileStore) scalar(name, query string) (decimal.Decimal, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return decimal.Zero, err
	}
	defer f.Close()
	v, err := decodeScalar(f, query)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func (s *FileStore) Attributions() (Attributions, error) {
	f, err := os.Open(s.path(AttributionsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeAttributions(f)
}

// WriteAttributions replaces the attribution file atomically.
func (s *FileStore) WriteAttributions(attrs Attributions) error {
	var buf bytes.Buffer
	if err := EncodeAttributions(&buf, attrs, s.percentPlaces); err != nil {
		return err
	}
	return s.replace(AttributionsFile, buf.Bytes())
}

func (s *FileStore) RecordedSourceIDs() ([]string, error) {
	f, err := os.Open(s.path(TransactionsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeSourceIDs(f)
}

func (s *FileStore) Transactions() ([]Transaction, error) {
	f, err := os.Open(s.path(TransactionsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTransactions(f)
}

// AppendTransactions appends all transactions to the log in a single write.
func (s *FileStore) AppendTransactions(txs []Transaction) error {
	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		return err
	}
	filename := s.path(TransactionsFile)
	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot open transactions file %q: %w", filename, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("cannot write to transactions file %q: %w", filename, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("cannot sync transactions file %q: %w", filename, err)
	}
	return f.Close()
}

func (s *FileStore) PendingInvestment() (*PendingInvestment, error) {
	data, err := os.ReadFile(s.path(PendingFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p PendingInvestment
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, malformed("%s: %v", PendingFile, err)
	}
	return &p, nil
}

func (s *FileStore) WritePendingInvestment(p PendingInvestment) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return s.replace(PendingFile, append(data, '\n'))
}

func (s *FileStore) ClearPendingInvestment() error {
	err := os.Remove(s.path(PendingFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// replace atomically replaces the file name with data: data is written to a
// temporary file in the same folder, then renamed.
func (s *FileStore) replace(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, "."+name+".*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file for %q: %w", name, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed.

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot sync %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close %q: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("cannot replace %q: %w", name, err)
	}
	return nil
}
