package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func usd(amount string, txType string, at time.Time) Row {
	return Row{CurrencyID: 147, CurrencyCode: "USD", CurrencyName: "US Dollar", TransactionType: txType, Amount: d(amount), TransactionDate: at}
}

func eur(amount string, txType string, at time.Time) Row {
	return Row{CurrencyID: 44, CurrencyCode: "EUR", CurrencyName: "Euro", TransactionType: txType, Amount: d(amount), TransactionDate: at}
}

func TestSummarizeByMonth_CurrentAndPrior(t *testing.T) {
	ref := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	rows := []Row{
		usd("100", "Expense", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)),
		usd("50", "Expense", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)),
	}

	got := SummarizeByMonth(rows, "Expense", ref)

	require.Len(t, got.Current, 1)
	require.Len(t, got.Prior, 1)
	assert.Equal(t, "USD", got.Current[0].CurrencyCode)
	assert.True(t, got.Current[0].Total.Equal(d("100")))
	assert.Equal(t, "2024-06", got.Current[0].Month.String())
	assert.True(t, got.Prior[0].Total.Equal(d("50")))
	assert.Equal(t, "2024-05", got.Prior[0].Month.String())
}

func TestSummarizeByMonth_SeparatesCurrencies(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	rows := []Row{
		usd("10.10", "Expense", june),
		eur("5.05", "Expense", june),
		usd("0.90", "Expense", june.Add(48*time.Hour)),
		eur("1.00", "Expense", june.Add(24*time.Hour)),
	}

	got := SummarizeByMonth(rows, "Expense", ref)

	require.Len(t, got.Current, 2)
	assert.Empty(t, got.Prior)
	assert.Equal(t, uint(147), got.Current[0].CurrencyID)
	assert.Equal(t, "11", got.Current[0].Total.String())
	assert.Equal(t, uint(44), got.Current[1].CurrencyID)
	assert.Equal(t, "6.05", got.Current[1].Total.StringFixed(2))
}

func TestSummarizeByMonth_FiltersTypeAndOtherMonths(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		usd("100", "Income", time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)),
		usd("7", "Expense", time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)),
		usd("8", "Expense", time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC)),
	}

	got := SummarizeByMonth(rows, "Expense", ref)
	assert.Empty(t, got.Current)
	assert.Empty(t, got.Prior)
	assert.NotNil(t, got.Current)
	assert.NotNil(t, got.Prior)
}

func TestSummarizeByMonth_FirstOfMonthBoundary(t *testing.T) {
	ref := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		usd("1", "Expense", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		usd("2", "Expense", time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)),
		usd("4", "Expense", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := SummarizeByMonth(rows, "Expense", ref)
	require.Len(t, got.Prior, 1)
	assert.Equal(t, "3", got.Prior[0].Total.String())
	require.Len(t, got.Current, 1)
	assert.Equal(t, "4", got.Current[0].Total.String())
}

func TestSummarizeByMonth_ThirtyFirstBoundary(t *testing.T) {
	ref := time.Date(2023, 3, 31, 18, 0, 0, 0, time.UTC)
	rows := []Row{
		usd("12", "Income", time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)),
		usd("99", "Income", time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC)),
	}

	got := SummarizeByMonth(rows, "Income", ref)
	require.Len(t, got.Prior, 1)
	assert.Equal(t, "2023-02", got.Prior[0].Month.String())
	assert.Equal(t, "12", got.Prior[0].Total.String())
}

func TestSummarizeByMonth_JanuaryRollsBackYear(t *testing.T) {
	ref := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := []Row{usd("3", "Expense", time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC))}

	got := SummarizeByMonth(rows, "Expense", ref)
	require.Len(t, got.Prior, 1)
	assert.Equal(t, "2024-12", got.Prior[0].Month.String())
}

func TestSummarizeByMonth_Idempotent(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	rows := randomRows(rand.New(rand.NewSource(7)), 200, ref)

	first := SummarizeByMonth(rows, "Expense", ref)
	second := SummarizeByMonth(rows, "Expense", ref)
	assert.Equal(t, first, second)
}

func TestSummarizeByMonth_SumsMatchPerCurrency(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		rows := randomRows(rng, 100, ref)
		got := SummarizeByMonth(rows, "Expense", ref)

		check := func(period []CurrencyTotal, month YearMonth) {
			seen := map[uint]bool{}
			for _, ct := range period {
				assert.False(t, seen[ct.CurrencyID], "currency %d listed twice", ct.CurrencyID)
				seen[ct.CurrencyID] = true

				want := decimal.Zero
				for _, r := range rows {
					if r.TransactionType == "Expense" && r.CurrencyID == ct.CurrencyID && MonthOf(r.TransactionDate) == month {
						want = want.Add(r.Amount)
					}
				}
				assert.True(t, want.Equal(ct.Total), "currency %d month %s: want %s got %s", ct.CurrencyID, month, want, ct.Total)
			}
		}
		check(got.Current, MonthOf(ref))
		check(got.Prior, PriorMonthKey(ref))
	}
}

func TestListTransactions_GroupsByDayTypeCurrency(t *testing.T) {
	morning := time.Date(2023, 2, 7, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2023, 2, 7, 20, 30, 0, 0, time.UTC)
	nextDay := time.Date(2023, 2, 8, 0, 0, 1, 0, time.UTC)

	rows := []Row{
		usd("5.25", "Expense", morning),
		usd("8.75", "Expense", evening),
		usd("1000", "Income", morning),
		eur("3", "Expense", evening),
		usd("1", "Expense", nextDay),
	}

	got := ListTransactions(rows)
	require.Len(t, got, 4)

	byKey := map[string]TransactionSummary{}
	for _, ts := range got {
		byKey[ts.CurrencyCode+"|"+ts.TransactionType+"|"+ts.FormattedDate] = ts
	}
	assert.Equal(t, "14", byKey["USD|Expense|2023-02-07"].Total.String())
	assert.Equal(t, "1000", byKey["USD|Income|2023-02-07"].Total.String())
	assert.Equal(t, "3", byKey["EUR|Expense|2023-02-07"].Total.String())
	assert.Equal(t, "1", byKey["USD|Expense|2023-02-08"].Total.String())
}

func TestListTransactions_Empty(t *testing.T) {
	got := ListTransactions(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func randomRows(rng *rand.Rand, n int, ref time.Time) []Row {
	types := []string{"Expense", "Income"}
	currencies := []Row{
		{CurrencyID: 147, CurrencyCode: "USD", CurrencyName: "US Dollar"},
		{CurrencyID: 44, CurrencyCode: "EUR", CurrencyName: "Euro"},
		{CurrencyID: 49, CurrencyCode: "GBP", CurrencyName: "Pound Sterling"},
	}
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		c := currencies[rng.Intn(len(currencies))]
		c.TransactionID = uint(i + 1)
		c.TransactionType = types[rng.Intn(len(types))]
		c.Amount = decimal.New(rng.Int63n(100000), -2)
		c.TransactionDate = ref.AddDate(0, 0, -rng.Intn(90)).Add(time.Duration(rng.Intn(86400)) * time.Second)
		rows = append(rows, c)
	}
	return rows
}
