// Package report groups a user's ledger rows into per-currency totals.
//
// Everything here is a pure function of its inputs: callers load the rows,
// these functions bucket and sum them. Amounts in different currencies are
// never added together.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one transaction joined with its currency.
type Row struct {
	TransactionID   uint
	TransactionType string
	CurrencyID      uint
	CurrencyCode    string
	CurrencyName    string
	Amount          decimal.Decimal
	TransactionDate time.Time
}

// CurrencyTotal is the sum of one currency within one month.
type CurrencyTotal struct {
	CurrencyID   uint            `json:"currency_id"`
	CurrencyCode string          `json:"currency_code"`
	CurrencyName string          `json:"currency_name"`
	Total        decimal.Decimal `json:"total"`
	Month        YearMonth       `json:"month"`
}

// MonthlySummary compares the month of the reference date with the month before it.
type MonthlySummary struct {
	Current []CurrencyTotal `json:"current"`
	Prior   []CurrencyTotal `json:"prior"`
}

// TransactionSummary is one row of the flat per-day listing.
type TransactionSummary struct {
	CurrencyID      uint            `json:"currency_id"`
	TransactionType string          `json:"transaction_type"`
	CurrencyCode    string          `json:"currency_code"`
	CurrencyName    string          `json:"currency_name"`
	Total           decimal.Decimal `json:"total"`
	FormattedDate   string          `json:"formatted_date"`
}

type monthKey struct {
	currencyID uint
	month      YearMonth
}

// SummarizeByMonth sums rows of txType per (currency, month) and returns the
// buckets for the month of ref and the month before it. Currencies without
// rows in a period are absent from that period. Output follows the order in
// which each currency first appears in rows.
func SummarizeByMonth(rows []Row, txType string, ref time.Time) MonthlySummary {
	current := MonthOf(ref)
	prior := current.Prior()

	totals := make(map[monthKey]*CurrencyTotal)
	var order []monthKey

	for _, r := range rows {
		if r.TransactionType != txType {
			continue
		}
		m := MonthOf(r.TransactionDate)
		if m != current && m != prior {
			continue
		}

		k := monthKey{currencyID: r.CurrencyID, month: m}
		ct, ok := totals[k]
		if !ok {
			ct = &CurrencyTotal{
				CurrencyID:   r.CurrencyID,
				CurrencyCode: r.CurrencyCode,
				CurrencyName: r.CurrencyName,
				Total:        decimal.Zero,
				Month:        m,
			}
			totals[k] = ct
			order = append(order, k)
		}
		ct.Total = ct.Total.Add(r.Amount)
	}

	out := MonthlySummary{
		Current: []CurrencyTotal{},
		Prior:   []CurrencyTotal{},
	}
	for _, k := range order {
		ct := *totals[k]
		if k.month == current {
			out.Current = append(out.Current, ct)
		} else {
			out.Prior = append(out.Prior, ct)
		}
	}
	return out
}

type dayKey struct {
	currencyID uint
	txType     string
	day        string
	code       string
	name       string
}

// ListTransactions collapses rows of both types into one total per
// (currency, type, UTC day). Callers must not rely on the output order.
func ListTransactions(rows []Row) []TransactionSummary {
	totals := make(map[dayKey]*TransactionSummary)
	var order []dayKey

	for _, r := range rows {
		k := dayKey{
			currencyID: r.CurrencyID,
			txType:     r.TransactionType,
			day:        DayOf(r.TransactionDate),
			code:       r.CurrencyCode,
			name:       r.CurrencyName,
		}
		ts, ok := totals[k]
		if !ok {
			ts = &TransactionSummary{
				CurrencyID:      r.CurrencyID,
				TransactionType: r.TransactionType,
				CurrencyCode:    r.CurrencyCode,
				CurrencyName:    r.CurrencyName,
				Total:           decimal.Zero,
				FormattedDate:   k.day,
			}
			totals[k] = ts
			order = append(order, k)
		}
		ts.Total = ts.Total.Add(r.Amount)
	}

	out := make([]TransactionSummary, 0, len(order))
	for _, k := range order {
		out = append(out, *totals[k])
	}
	return out
}
