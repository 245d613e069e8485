package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taxpilot/docparse/internal/domain/parse"
)

func TestInterestMinorAmount(t *testing.T) {
	t.Run("shifts misplaced decimal", func(t *testing.T) {
		tr := parse.Transaction{Description: "INTEREST CREDIT", Credit: 1550}
		assert.True(t, interestMinorAmount(&tr, nil))
		assert.Equal(t, 15.50, tr.Credit)
	})

	t.Run("small credits untouched", func(t *testing.T) {
		tr := parse.Transaction{Description: "INTEREST CREDIT", Credit: 9.99}
		assert.False(t, interestMinorAmount(&tr, nil))
		assert.Equal(t, 9.99, tr.Credit)
	})

	t.Run("needs both keywords", func(t *testing.T) {
		tr := parse.Transaction{Description: "SALARY CREDIT", Credit: 1550}
		assert.False(t, interestMinorAmount(&tr, nil))
	})
}

func TestFixCheckPlus50(t *testing.T) {
	t.Run("absorbs residual into small debit", func(t *testing.T) {
		residual := -50.0
		tr := parse.Transaction{Description: "CHECK 1021", Debit: 2}
		assert.True(t, fixCheckPlus50(&tr, &residual))
		assert.Equal(t, 52.0, tr.Debit)
	})

	t.Run("nil residual is a no-op", func(t *testing.T) {
		tr := parse.Transaction{Description: "CHECK 1021", Debit: 2}
		assert.False(t, fixCheckPlus50(&tr, nil))
	})

	t.Run("residual outside band", func(t *testing.T) {
		residual := -30.0
		tr := parse.Transaction{Description: "CHECK 1021", Debit: 2}
		assert.False(t, fixCheckPlus50(&tr, &residual))
	})

	t.Run("large debit untouched", func(t *testing.T) {
		residual := -50.0
		tr := parse.Transaction{Description: "CHECK 1021", Debit: 40}
		assert.False(t, fixCheckPlus50(&tr, &residual))
	})
}

func TestJoinNEFTRef(t *testing.T) {
	t.Run("joins split reference", func(t *testing.T) {
		tr := parse.Transaction{Description: "NEFT-UTR 1A2B3C4D VENDOR"}
		assert.True(t, joinNEFTRef(&tr, nil))
		assert.Equal(t, "NEFT-UTR-1A2B3C4D VENDOR", tr.Description)
	})

	t.Run("short token untouched", func(t *testing.T) {
		tr := parse.Transaction{Description: "NEFT REF"}
		assert.False(t, joinNEFTRef(&tr, nil))
		assert.Equal(t, "NEFT REF", tr.Description)
	})
}

func TestApplyRuleUnknownName(t *testing.T) {
	tr := parse.Transaction{Description: "ANYTHING"}
	assert.False(t, applyRule("no_such_rule", &tr, nil))
}
