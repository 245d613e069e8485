package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/money"
	"github.com/taxpilot/docparse/pkg/policy"
)

func fptr(v float64) *float64 { return &v }

func TestNormalizeReconciledStatement(t *testing.T) {
	in := Input{
		OCRText: "FIRST NATIONAL BANK\nStatement from March 1 through March 20",
		Transactions: []parse.Transaction{
			{Date: "2024-03-01", Description: "NEFT SALARY CREDIT", Credit: 500, Balance: fptr(569.96)},
			{Date: "2024-03-10", Description: "ATM WITHDRAWAL", Debit: 100, Balance: fptr(469.96)},
			{Date: "2024-03-15", Description: "UPI GROCERY STORE", Debit: 50.25, Balance: fptr(419.71)},
			{Date: "2024-03-20", Description: "INTEREST", Credit: 167, Balance: fptr(586.71)},
		},
		OpeningBalance: fptr(69.96),
		ClosingBalance: fptr(586.71),
		FallbackYear:   2024,
	}

	res := Normalize(in, policy.Generic())
	require.NotNil(t, res)

	assert.Equal(t, "2024-03-01", res.PeriodStart)
	assert.Equal(t, "2024-03-20", res.PeriodEnd)
	assert.Equal(t, 2024, res.Year)
	assert.Equal(t, 1.0, res.ReconciliationRate)
	assert.Equal(t, 0.0, res.ClosingDrift)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, policy.GenericProfileName, res.ProfileName)

	require.Len(t, res.Transactions, 4)
	for _, tr := range res.Transactions {
		assert.Nil(t, tr.Residual)
	}
	assert.Equal(t, 150.25, res.Totals.Debits)
	assert.Equal(t, 667.0, res.Totals.Credits)
	assert.Equal(t, 4, res.Totals.Count)
	require.NotNil(t, res.Totals.ClosingBalance)
	assert.Equal(t, 586.71, *res.Totals.ClosingBalance)
}

func TestNormalizeClosingDrift(t *testing.T) {
	in := Input{
		Transactions: []parse.Transaction{
			{Date: "2024-03-01", Description: "POS PURCHASE", Debit: 20, Balance: fptr(80)},
		},
		OpeningBalance: fptr(100),
		ClosingBalance: fptr(95),
		FallbackYear:   2024,
	}

	res := Normalize(in, policy.Generic())

	// computed closing is 80, stated closing is 95
	assert.Equal(t, 15.0, res.ClosingDrift)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Balance drift detected")
}

func TestNormalizeResidualExposed(t *testing.T) {
	in := Input{
		Transactions: []parse.Transaction{
			{Date: "2024-03-01", Description: "MISC DEBIT", Debit: 20, Balance: fptr(75)},
		},
		OpeningBalance: fptr(100),
		FallbackYear:   2024,
	}

	res := Normalize(in, policy.Generic())

	assert.Equal(t, 0.0, res.ReconciliationRate)
	require.Len(t, res.Transactions, 1)
	require.NotNil(t, res.Transactions[0].Residual)
	assert.Equal(t, -5.0, *res.Transactions[0].Residual)
}

func TestNormalizeCheckChannel(t *testing.T) {
	in := Input{
		Transactions: []parse.Transaction{
			{Date: "2024-03-05", Description: "CHECK 1249 §", Debit: 40, Balance: fptr(60)},
		},
		OpeningBalance: fptr(100),
		ClosingBalance: fptr(60),
		FallbackYear:   2024,
	}

	res := Normalize(in, policy.Generic())

	require.Len(t, res.Transactions, 1)
	tr := res.Transactions[0]
	assert.Equal(t, "CHECK 1249 5", tr.Description)
	assert.Equal(t, "CHECK", tr.Channel)
	assert.Equal(t, 1.0, res.ReconciliationRate)
	assert.Equal(t, 0.0, res.ClosingDrift)
}

func TestNormalizeFixCheckPlus50Rule(t *testing.T) {
	profile := policy.Profile{
		Name:              "first_national",
		ResidualTolerance: 1.0,
		TxRules:           []string{"fix_check_plus_50"},
	}
	in := Input{
		Transactions: []parse.Transaction{
			// OCR dropped the leading 5: debit should have been 52.00
			{Date: "2024-03-05", Description: "POS PURCHASE STORE", Debit: 2, Balance: fptr(48)},
		},
		OpeningBalance: fptr(100),
		ClosingBalance: fptr(48),
		FallbackYear:   2024,
	}

	res := Normalize(in, profile)

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, 52.0, res.Transactions[0].Debit)
	assert.Nil(t, res.Transactions[0].Residual)
	assert.Equal(t, 1.0, res.ReconciliationRate)
	assert.Equal(t, 0.0, res.ClosingDrift)
	assert.Equal(t, "first_national", res.ProfileName)
}

func TestNormalizePartialDates(t *testing.T) {
	in := Input{
		OCRText: "Statement from March 1 through March 20",
		Transactions: []parse.Transaction{
			{Date: "--03-07", Description: "UPI TRANSFER", Debit: 10},
			{Date: "15/03", Description: "NEFT CREDIT", Credit: 10},
		},
		FallbackYear: 2024,
	}

	res := Normalize(in, policy.Generic())

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "2024-03-07", res.Transactions[0].Date)
	assert.Equal(t, "2024-03-15", res.Transactions[1].Date)
}

func TestInferPeriodAndYear(t *testing.T) {
	t.Run("month day pairs", func(t *testing.T) {
		start, end, year := inferPeriodAndYear("opening on February 3, closing February 28", 2024)
		assert.Equal(t, "2024-02-03", start)
		assert.Equal(t, "2024-02-28", end)
		assert.Equal(t, 2024, year)
	})

	t.Run("no pairs", func(t *testing.T) {
		start, end, year := inferPeriodAndYear("no dates here", 2023)
		assert.Empty(t, start)
		assert.Empty(t, end)
		assert.Equal(t, 2023, year)
	})
}

func TestNormDateMMDD(t *testing.T) {
	march := map[int]bool{3: true}

	t.Run("month first", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", normDateMMDD("03-15", 2024, march, 0))
	})

	t.Run("day first resolved by allowed months", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", normDateMMDD("15-03", 2024, march, 0))
	})

	t.Run("ambiguous prefers allowed month", func(t *testing.T) {
		assert.Equal(t, "2024-02-01", normDateMMDD("1-2", 2024, map[int]bool{2: true}, 0))
	})

	t.Run("explicit year token", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", normDateMMDD("03/15/24", 2024, nil, 0))
	})

	t.Run("fallback month", func(t *testing.T) {
		assert.Equal(t, "2024-06-25", normDateMMDD("25-40", 2024, nil, 6))
	})

	t.Run("invalid calendar date", func(t *testing.T) {
		assert.Empty(t, normDateMMDD("02-30", 2024, map[int]bool{2: true}, 0))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, normDateMMDD("-- ", 2024, nil, 0))
	})
}

func TestCleanDescription(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"pos misreads":        {"P0S PURCHA5E GROCERY", "POS PURCHASE GROCERY"},
		"interest credit":     {"INTEREST CRED1T", "INTEREST CREDIT"},
		"atm withdrawal":      {"ATM W1THDRAWAL", "ATM WITHDRAWAL"},
		"check trailing char": {"CHECK   1249A", "CHECK 1249"},
		"digit noise kept":    {"0O12", "0O12"},
		"whitespace collapse": {"NEFT   REF   123456", "NEFT REF 123456"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, cleanDescription(tc.in))
		})
	}
}

func TestNormalizeGeneratedStatement(t *testing.T) {
	gen := money.NewTestDataGenerator(42)
	opening := 2500.0
	rows := gen.ReconciledBankTransactions(opening, 12, 2024, 3)

	txns := make([]parse.Transaction, len(rows))
	for i, r := range rows {
		txns[i] = parse.Transaction{
			Date:        r.Date,
			Description: r.Description,
			Debit:       r.Debit,
			Credit:      r.Credit,
			Balance:     fptr(r.Balance),
		}
	}

	res := Normalize(Input{
		Transactions:   txns,
		OpeningBalance: fptr(opening),
		ClosingBalance: fptr(rows[len(rows)-1].Balance),
		FallbackYear:   2024,
	}, policy.Generic())

	require.Len(t, res.Transactions, 12)
	assert.InDelta(t, 1.0, res.ReconciliationRate, 1e-9)
	assert.InDelta(t, 0.0, res.ClosingDrift, 1e-9)
	assert.Equal(t, 12, res.Totals.Count)
	assert.Empty(t, res.Warnings)
}

func TestInferPeriodFoldsYearWrap(t *testing.T) {
	// Month/day pairs are ordered before the span is built, so a statement
	// mentioning December and January stays inside one calendar year.
	text := "Statement from December 28 through January 3"
	start, end, year := inferPeriodAndYear(text, 2024)

	assert.Equal(t, 2024, year)
	assert.Equal(t, "2024-01-03", start)
	assert.Equal(t, "2024-12-28", end)
}
