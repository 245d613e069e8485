package money

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// TestDataGenerator fabricates internally consistent financial fixtures:
// register rows whose tax heads add up, and bank transaction runs whose
// balances reconcile. Seeded generators repeat exactly.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a fixed seed so tests are
// reproducible.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

var gstStateCodes = []string{"07", "09", "19", "24", "27", "29", "32", "33", "36"}

var gstRates = []float64{0.05, 0.12, 0.18, 0.28}

// GSTIN returns a random GSTIN-shaped identifier (state code + PAN shape +
// entity/checksum tail). Shape only; the checksum is not real.
func (g *TestDataGenerator) GSTIN() string {
	state := gstStateCodes[g.faker.Number(0, len(gstStateCodes)-1)]
	pan := strings.ToUpper(g.faker.LetterN(5)) + g.faker.DigitN(4) + strings.ToUpper(g.faker.LetterN(1))
	return state + pan + "1Z" + g.faker.DigitN(1)
}

// TestRegisterRow is one generated sales/purchase register line. The tax
// heads are derived from the taxable value, so Total always equals
// TaxableValue plus the heads after rounding.
type TestRegisterRow struct {
	InvoiceNumber string
	InvoiceDate   string
	PartyName     string
	PartyGSTIN    string
	TaxableValue  float64
	IGST          float64
	CGST          float64
	SGST          float64
	Total         float64
	InterState    bool
}

// RegisterRow generates one register line for the given period. Inter-state
// rows carry IGST, intra-state rows split CGST/SGST.
func (g *TestDataGenerator) RegisterRow(seq, year, month int) TestRegisterRow {
	taxable := Round2(g.faker.Float64Range(1000, 500000))
	rate := gstRates[g.faker.Number(0, len(gstRates)-1)]
	inter := g.faker.Bool()

	row := TestRegisterRow{
		InvoiceNumber: fmt.Sprintf("INV-%04d-%04d", year, seq),
		InvoiceDate:   fmt.Sprintf("%04d-%02d-%02d", year, month, g.faker.Number(1, 28)),
		PartyName:     g.faker.Company(),
		PartyGSTIN:    g.GSTIN(),
		TaxableValue:  taxable,
		InterState:    inter,
	}
	if inter {
		row.IGST = Round2(taxable * rate)
	} else {
		row.CGST = Round2(taxable * rate / 2)
		row.SGST = Round2(taxable * rate / 2)
	}
	row.Total = Round2(Sum2(taxable, row.IGST, row.CGST, row.SGST))
	return row
}

// RegisterRows generates count register lines for one period.
func (g *TestDataGenerator) RegisterRows(count, year, month int) []TestRegisterRow {
	rows := make([]TestRegisterRow, count)
	for i := range rows {
		rows[i] = g.RegisterRow(i+1, year, month)
	}
	return rows
}

// TestBankTransaction is one generated statement row with an observed
// running balance.
type TestBankTransaction struct {
	Date        string
	Description string
	Debit       float64
	Credit      float64
	Balance     float64
}

var bankNarrations = []string{
	"POS PURCHASE GROCERY MART",
	"NEFT SALARY CREDIT",
	"ATM WITHDRAWAL CASH",
	"UPI PAYMENT ELECTRICITY",
	"SERVICE CHARGE",
	"INTEREST CREDIT",
	"CHEQUE DEPOSIT",
	"IMPS TRANSFER RECEIVED",
}

// ReconciledBankTransactions generates count rows whose running balance
// follows opening exactly, so the normalizer reconciles them at rate 1.0.
// The final row's Balance is the statement's true closing balance.
func (g *TestDataGenerator) ReconciledBankTransactions(opening float64, count, year, month int) []TestBankTransaction {
	balance := Round2(opening)
	txns := make([]TestBankTransaction, 0, count)
	day := 1
	for i := 0; i < count; i++ {
		desc := bankNarrations[g.faker.Number(0, len(bankNarrations)-1)]
		amt := Round2(g.faker.Float64Range(10, 5000))

		tx := TestBankTransaction{
			Date:        fmt.Sprintf("%04d-%02d-%02d", year, month, day),
			Description: desc,
		}
		// Credits for inbound narrations, debits otherwise; never let the
		// balance go negative so the run stays statement-plausible.
		if strings.Contains(desc, "CREDIT") || strings.Contains(desc, "DEPOSIT") || strings.Contains(desc, "RECEIVED") {
			tx.Credit = amt
			balance = Round2(Sum2(balance, amt))
		} else {
			if amt > balance {
				amt = Round2(balance / 2)
			}
			tx.Debit = amt
			balance = Round2(Sum2(balance, -amt))
		}
		tx.Balance = balance
		txns = append(txns, tx)

		if day < 28 {
			day++
		}
	}
	return txns
}
