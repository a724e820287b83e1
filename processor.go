package abe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Processor processes the payments of a store into the ledger.
//
// A Processor must not run concurrently with another one on the same store.
type Processor struct {
	store    Store
	revision RevisionFunc
	now      func() time.Time
	log      *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithRevision sets the source of the revision stamp, the git revision of
// the current directory by default.
func WithRevision(r RevisionFunc) Option { return func(p *Processor) { p.revision = r } }

// WithClock sets the clock used to timestamp transactions.
func WithClock(now func() time.Time) Option { return func(p *Processor) { p.now = now } }

// WithLogger sets the logger, nothing is logged by default.
func WithLogger(log *zap.Logger) Option { return func(p *Processor) { p.log = log } }

// NewProcessor creates a Processor for store.
func NewProcessor(store Store, opts ...Option) *Processor {
	p := &Processor{
		store:    store,
		revision: GitRevision("."),
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every payment of the store not yet recorded in the
// transaction log, in ascending source id order.
//
// Price and valuation are read once and hold for the whole run. Each payment
// is fully processed (transactions and dilution) before the next one.
// Payments processed before a failure stay committed, the report lists them.
//
// Cancelling ctx stops the run between two payments.
func (p *Processor) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{ID: uuid.NewString(), StartedAt: p.now()}
	log := p.log.With(zap.String("run_id", report.ID))

	pending, err := p.store.PendingInvestment()
	if err != nil {
		return report, fmt.Errorf("cannot read pending investment: %w", err)
	}
	if pending != nil {
		return report, fmt.Errorf("%w: the investment of payment %q by %s is still pending, resolve it first", ErrPartialWrite, pending.SourceID, pending.Payer)
	}

	// fail on a corrupt ledger before processing anything.
	if _, err := p.attributions(); err != nil {
		return report, err
	}

	if report.Price, err = p.store.Price(); err != nil {
		return report, fmt.Errorf("cannot read price: %w", err)
	}
	if report.Valuation, err = p.store.Valuation(); err != nil {
		return report, fmt.Errorf("cannot read valuation: %w", err)
	}
	if report.Price.IsNegative() {
		return report, malformed("price must not be negative: %s", report.Price)
	}
	if !report.Valuation.IsPositive() {
		return report, malformed("valuation must be positive: %s", report.Valuation)
	}

	if report.Revision, err = p.revision(); err != nil {
		return report, fmt.Errorf("cannot read revision stamp: %w", err)
	}

	all, err := p.store.PaymentIDs()
	if err != nil {
		return report, fmt.Errorf("cannot list payments: %w", err)
	}
	recorded, err := p.store.RecordedSourceIDs()
	if err != nil {
		return report, fmt.Errorf("cannot list recorded payments: %w", err)
	}
	ids := Unprocessed(all, recorded)
	log.Info("starting run",
		zap.Int("payments", len(all)),
		zap.Int("unprocessed", len(ids)),
		zap.String("price", report.Price.String()),
		zap.String("valuation", report.Valuation.String()),
		zap.String("revision", report.Revision),
	)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		processed, err := p.process(id, report.Price, report.Valuation, report.Revision, log)
		if err != nil {
			log.Error("payment failed", zap.String("source_id", id), zap.Error(err))
			if errors.Is(err, ErrPartialWrite) {
				// its transactions are in the log, report them.
				report.Payments = append(report.Payments, processed)
			}
			return report, &PaymentError{ID: id, Err: err}
		}
		report.Payments = append(report.Payments, processed)
	}
	log.Info("run completed", zap.Int("processed", len(report.Payments)), zap.Int("investments", report.Investments()))
	return report, nil
}

// process processes a single payment.
//
// Everything that can be computed is computed before the first write, so that
// a failure leaves the ledger untouched unless a write itself fails.
func (p *Processor) process(id string, price, valuation decimal.Decimal, revision string, log *zap.Logger) (ProcessedPayment, error) {
	payment, err := p.store.Payment(id)
	if err != nil {
		return ProcessedPayment{}, err
	}
	if err := payment.Validate(); err != nil {
		return ProcessedPayment{}, err
	}
	attrs, err := p.attributions()
	if err != nil {
		return ProcessedPayment{}, err
	}
	total, err := TotalPaid(p.store, payment.Payer)
	if err != nil {
		return ProcessedPayment{}, fmt.Errorf("cannot compute total paid by %s: %w", payment.Payer, err)
	}

	now := p.now()
	result := ProcessedPayment{
		Payment:      payment,
		TotalPaid:    total,
		Transactions: GenerateTransactions(payment.Amount, attrs, id, revision, now),
		Attributions: attrs,
	}

	inv, invested := Classify(payment.Payer, payment.Amount, total, price, valuation)
	var base string
	if invested {
		// a share above 1 would leave the other holders with negative shares.
		if inv.Share.GreaterThan(one) {
			return ProcessedPayment{}, malformed("payment %q invests %s, more than the valuation %s", id, inv.Amount, valuation)
		}
		result.Investment = &inv
		result.Attributions = attrs.Dilute(inv)
		if base, err = attrs.Digest(); err != nil {
			return ProcessedPayment{}, err
		}
	}

	// The split always uses the table before dilution.
	if err := p.store.AppendTransactions(result.Transactions); err != nil {
		return ProcessedPayment{}, fmt.Errorf("cannot append transactions: %w", err)
	}
	log.Info("payment processed",
		zap.String("source_id", id),
		zap.String("payer", payment.Payer),
		zap.String("amount", payment.Amount.String()),
		zap.Int("transactions", len(result.Transactions)),
	)
	if !invested {
		return result, nil
	}

	if err := p.store.WriteAttributions(result.Attributions); err != nil {
		marker := PendingInvestment{
			SourceID:  id,
			Payer:     inv.Payer,
			Amount:    inv.Amount,
			Share:     inv.Share,
			Base:      base,
			Reason:    err.Error(),
			CreatedAt: now,
		}
		if merr := p.store.WritePendingInvestment(marker); merr != nil {
			return result, fmt.Errorf("%w: transactions committed but attributions not updated: %w (pending investment not recorded either: %v)", ErrPartialWrite, err, merr)
		}
		return result, fmt.Errorf("%w: transactions committed but attributions not updated: %w", ErrPartialWrite, err)
	}
	log.Info("investment applied",
		zap.String("source_id", id),
		zap.String("payer", inv.Payer),
		zap.String("invested", inv.Amount.String()),
		zap.String("share", inv.Share.String()),
		zap.String("base", base),
	)
	return result, nil
}

// Resolve applies the pending investment left by a failed run, if any, and
// returns it.
//
// The dilution is only applied when the attribution table is still the one
// the investment was computed against.
func (p *Processor) Resolve() (*PendingInvestment, error) {
	pending, err := p.store.PendingInvestment()
	if err != nil {
		return nil, fmt.Errorf("cannot read pending investment: %w", err)
	}
	if pending == nil {
		return nil, nil
	}
	attrs, err := p.attributions()
	if err != nil {
		return pending, err
	}
	digest, err := attrs.Digest()
	if err != nil {
		return pending, err
	}
	if digest != pending.Base {
		return pending, fmt.Errorf("%w: attribution table changed since the investment of payment %q was computed (%s != %s)", ErrPartialWrite, pending.SourceID, digest, pending.Base)
	}
	if err := p.store.WriteAttributions(attrs.Dilute(pending.Investment())); err != nil {
		return pending, fmt.Errorf("cannot write attributions: %w", err)
	}
	if err := p.store.ClearPendingInvestment(); err != nil {
		return pending, fmt.Errorf("%w: attributions updated but pending investment not cleared: %w", ErrPartialWrite, err)
	}
	p.log.Info("pending investment resolved", zap.String("source_id", pending.SourceID), zap.String("payer", pending.Payer))
	return pending, nil
}

// attributions reads and validates the attribution table.
func (p *Processor) attributions() (Attributions, error) {
	attrs, err := p.store.Attributions()
	if err != nil {
		return nil, fmt.Errorf("cannot read attributions: %w", err)
	}
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	return attrs, nil
}
