// Package abe maintains the equity-attribution ledger of an organization
// funded by its contributors' payments.
//
// Every payment is split among the current equity holders as a revenue
// distribution, one transaction per holder. A payer whose cumulative payments
// exceed the price becomes an investor: what goes over the threshold is
// converted into an ownership share at the current valuation, diluting the
// existing holders.
//
// The core functionalities include:
//   - Detection of the payments not yet recorded in the transaction log
//     (Unprocessed).
//   - Cumulative payment tracking (TotalPaid) and investment classification
//     (Classify).
//   - Revenue split (GenerateTransactions) and dilution of the attribution
//     table (Attributions.Dilute).
//   - Orchestration of a run (Processor), including the recovery of an
//     investment left pending by a failed run.
//   - Persistence in a human-readable, git-friendly ledger directory
//     (FileStore), or in memory (MemStore).
//
// This package serves as the foundational logic of the `moneyin`
// command-line tool.
package abe
