package abe

import (
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

var _ Store = (*MemStore)(nil)

// MemStore is a Store kept in memory.
//
// It is used to compute a run without touching the actual ledger (see
// Snapshot), and in tests.
type MemStore struct {
	payments     map[string]Payment
	price        decimal.Decimal
	valuation    decimal.Decimal
	attributions Attributions
	transactions []Transaction
	pending      *PendingInvestment
}

// NewMemStore creates an in-memory store without payments nor transactions.
func NewMemStore(price, valuation decimal.Decimal, attrs Attributions) *MemStore {
	return &MemStore{
		payments:     make(map[string]Payment),
		price:        price,
		valuation:    valuation,
		attributions: attrs.Clone(),
	}
}

// Snapshot copies the whole content of s into a new MemStore.
func Snapshot(s Store) (*MemStore, error) {
	price, err := s.Price()
	if err != nil {
		return nil, err
	}
	valuation, err := s.Valuation()
	if err != nil {
		return nil, err
	}
	attrs, err := s.Attributions()
	if err != nil {
		return nil, err
	}
	m := NewMemStore(price, valuation, attrs)

	ids, err := s.PaymentIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		p, err := s.Payment(id)
		if err != nil {
			return nil, err
		}
		m.AddPayment(p)
	}

	if m.transactions, err = s.Transactions(); err != nil {
		return nil, err
	}
	if m.pending, err = s.PendingInvestment(); err != nil {
		return nil, err
	}
	return m, nil
}

// AddPayment deposits a payment in the store, replacing any payment with the same id.
func (m *MemStore) AddPayment(p Payment) { m.payments[p.ID] = p }

func (m *MemStore) PaymentIDs() ([]string, error) {
	return slices.Collect(maps.Keys(m.payments)), nil
}

func (m *MemStore) Payment(id string) (Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return Payment{}, fmt.Errorf("unknown payment %q", id)
	}
	return p, nil
}

func (m *MemStore) Price() (decimal.Decimal, error)     { return m.price, nil }
func (m *MemStore) Valuation() (decimal.Decimal, error) { return m.valuation, nil }

func (m *MemStore) Attributions() (Attributions, error) { return m.attributions.Clone(), nil }

func (m *MemStore) WriteAttributions(attrs Attributions) error {
	m.attributions = attrs.Clone()
	return nil
}

func (m *MemStore) RecordedSourceIDs() ([]string, error) {
	ids := make([]string, 0, len(m.transactions))
	for _, tx := range m.transactions {
		ids = append(ids, tx.SourceID)
	}
	return ids, nil
}

func (m *MemStore) Transactions() ([]Transaction, error) { return slices.Clone(m.transactions), nil }

func (m *MemStore) AppendTransactions(txs []Transaction) error {
	m.transactions = append(m.transactions, txs...)
	return nil
}

func (m *MemStore) PendingInvestment() (*PendingInvestment, error) {
	if m.pending == nil {
		return nil, nil
	}
	p := *m.pending
	return &p, nil
}

func (m *MemStore) WritePendingInvestment(p PendingInvestment) error {
	m.pending = &p
	return nil
}

func (m *MemStore) ClearPendingInvestment() error {
	m.pending = nil
	return nil
}
