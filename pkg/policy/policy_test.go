package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePolicy = `
defaults:
  residual_tolerance: 1.0
  tx_rules:
    - join_neft_ref
profiles:
  first_national:
    detect:
      - "first national bank"
      - "member fdic"
    residual_tolerance: 1.0
    tx_rules:
      - interest_minor_amount
      - fix_check_plus_50
  hdfc:
    detect:
      - "hdfc bank"
`

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAndPick(t *testing.T) {
	store, err := Load(writePolicy(t, samplePolicy))
	require.NoError(t, err)

	t.Run("matches profile by page-1 text", func(t *testing.T) {
		p := store.Pick("FIRST NATIONAL BANK\nStatement of Account\nMember FDIC")
		assert.Equal(t, "first_national", p.Name)
		assert.Equal(t, []string{"interest_minor_amount", "fix_check_plus_50"}, p.TxRules)
		assert.Equal(t, 1.0, p.ResidualTolerance)
	})

	t.Run("profile without rules inherits defaults", func(t *testing.T) {
		p := store.Pick("HDFC Bank statement period")
		assert.Equal(t, "hdfc", p.Name)
		assert.Equal(t, []string{"join_neft_ref"}, p.TxRules)
	})

	t.Run("no match falls back to generic", func(t *testing.T) {
		p := store.Pick("some unrelated text")
		assert.Equal(t, GenericProfileName, p.Name)
		assert.Equal(t, []string{"join_neft_ref"}, p.TxRules)
	})
}

func TestLoadMissingFile(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GenericProfileName, store.Pick("anything").Name)
}

func TestLoadBadPattern(t *testing.T) {
	_, err := Load(writePolicy(t, "profiles:\n  broken:\n    detect:\n      - \"(unclosed\"\n"))
	assert.Error(t, err)
}
