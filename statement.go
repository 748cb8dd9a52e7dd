package teller

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one recorded movement on the account, as reported by the service.
type Entry struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"` // DEPOSIT, WITHDRAW, TRANSFER
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"fromUsername,omitempty"`
	To        string          `json:"toUsername,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// StatementMarkdown renders account entries as a markdown table, newest first.
func StatementMarkdown(entries []Entry) string {
	var b strings.Builder
	b.WriteString("# Account Statement\n\n")
	if len(entries) == 0 {
		b.WriteString("No transactions recorded.\n")
		return b.String()
	}
	b.WriteString("| Date | Type | Amount | Counterparty |\n")
	b.WriteString("|---|---|---:|---|\n")
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			e.Timestamp.Format("2006-01-02 15:04"),
			e.Type,
			M(e.Amount, DefaultCurrency),
			e.counterparty(),
		)
	}
	return b.String()
}

// counterparty names the other side of a transfer, or "-" for deposits and
// withdrawals.
func (e Entry) counterparty() string {
	if e.To != "" {
		return e.To
	}
	if e.From != "" {
		return e.From
	}
	return "-"
}
