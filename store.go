package abe

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentReader gives read access to the payment records.
type PaymentReader interface {
	// PaymentIDs lists the ids of all payments in the store, in no particular order.
	PaymentIDs() ([]string, error)
	// Payment reads a single payment.
	Payment(id string) (Payment, error)
}

// Store is the record store the ledger is kept in.
//
// A Store is used by a single writer at a time, implementations do not
// need to be safe for concurrent use.
type Store interface {
	PaymentReader

	// Price reads the investment threshold.
	Price() (decimal.Decimal, error)
	// Valuation reads the value used to convert an investment into a share.
	Valuation() (decimal.Decimal, error)

	// Attributions reads the current attribution table.
	Attributions() (Attributions, error)
	// WriteAttributions replaces the attribution table as a whole.
	WriteAttributions(Attributions) error

	// RecordedSourceIDs lists the source ids already present in the
	// transaction log.
	RecordedSourceIDs() ([]string, error)
	// Transactions reads the whole transaction log, in append order.
	Transactions() ([]Transaction, error)
	// AppendTransactions appends transactions to the log.
	AppendTransactions([]Transaction) error

	// PendingInvestment returns the pending investment marker, or nil.
	PendingInvestment() (*PendingInvestment, error)
	// WritePendingInvestment records an investment that could not be applied.
	WritePendingInvestment(PendingInvestment) error
	// ClearPendingInvestment removes the pending investment marker, if any.
	ClearPendingInvestment() error
}

// PendingInvestment marks an investment whose payment transactions have been
// committed but whose dilution could not be written.
type PendingInvestment struct {
	SourceID  string          `json:"source_id"`
	Payer     string          `json:"payer"`
	Amount    decimal.Decimal `json:"amount"`
	Share     decimal.Decimal `json:"share"`
	Base      string          `json:"base"` // digest of the attribution table the dilution applies to.
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Investment returns the investment to apply.
func (p PendingInvestment) Investment() Investment {
	return Investment{Payer: p.Payer, Amount: p.Amount, Share: p.Share}
}

// RevisionFunc returns the revision stamp of the ledger, stamped on every
// transaction. The stamp is opaque to the ledger.
type RevisionFunc func() (string, error)

// StaticRevision returns a RevisionFunc that always returns rev.
func StaticRevision(rev string) RevisionFunc {
	return func() (string, error) { return rev, nil }
}

// GitRevision returns a RevisionFunc that reads the short hash of the HEAD
// commit of the git repository in dir.
func GitRevision(dir string) RevisionFunc {
	return func() (string, error) {
		cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
		cmd.Dir = dir
		out, err := cmd.Output()
		if err != nil {
			return "", fmt.Errorf("cannot read git revision in %q: %w", dir, err)
		}
		return strings.TrimSpace(string(out)), nil
	}
}
