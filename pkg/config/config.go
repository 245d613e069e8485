// Package config loads pipeline configuration from environment variables.
package config

import (
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all tunables for the parsing pipeline. It is built once at
// startup and passed into every component; nothing mutates it afterwards.
type Config struct {
	Detection Detection
	Parse     Parse
	Bank      Bank
	Recon     Recon
}

// Detection thresholds. The confidence floor and the score/5 scaling are
// empirically tuned against the current document corpus.
// TODO: recalibrate ConfidenceFloor once the Hindi OCR corpus is larger.
type Detection struct {
	// ConfidenceFloor downgrades classifications below it to "unknown".
	ConfidenceFloor float64
	// LowConfidenceWarn adds a warning to parse results below it.
	LowConfidenceWarn float64
}

// Parse holds rule-parser settings.
type Parse struct {
	// HindiRules switches the invoice, receipt, utility bill and e-way
	// bill parsers to their Devanagari-first rule tables.
	HindiRules bool
}

// Bank holds bank-statement normalization settings.
type Bank struct {
	// PolicyPath points at the YAML bank-profile policy file. Empty means
	// built-in generic defaults only.
	PolicyPath string
	// ResidualTolerance is the default residual window for balance checks,
	// in currency units.
	ResidualTolerance float64
}

// Recon holds reconciliation settings.
type Recon struct {
	// Tolerance is the per-head difference allowed before a mismatch is
	// reported, in currency units.
	Tolerance float64
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Detection: Detection{
			ConfidenceFloor:   getEnvAsFloat("DETECT_CONFIDENCE_FLOOR", 0.35),
			LowConfidenceWarn: getEnvAsFloat("DETECT_LOW_CONFIDENCE_WARN", 0.4),
		},
		Parse: Parse{
			HindiRules: getEnvAsBool("PARSE_HINDI_RULES", false),
		},
		Bank: Bank{
			PolicyPath:        getEnv("BANK_POLICY_PATH", ""),
			ResidualTolerance: getEnvAsFloat("BANK_RESIDUAL_TOLERANCE", 1.0),
		},
		Recon: Recon{
			Tolerance: getEnvAsFloat("RECON_TOLERANCE", 1.0),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
