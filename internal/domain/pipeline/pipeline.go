// Package pipeline orchestrates a single-document parse: text extraction,
// document type detection, routing to the per-type parser, bank statement
// normalization and the assembly of run metadata. Parsers stay pure; all
// logging and configuration lives here.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taxpilot/docparse/internal/domain/bank"
	"github.com/taxpilot/docparse/internal/domain/detect"
	"github.com/taxpilot/docparse/internal/domain/extract"
	"github.com/taxpilot/docparse/internal/domain/parse"
	"github.com/taxpilot/docparse/pkg/config"
	"github.com/taxpilot/docparse/pkg/policy"
)

const unknownDocWarning = "Unsupported or unknown document type"

// Statements are chatty documents; below this confidence a bank
// classification is suspect even when the parse went through.
const bankLowConfidenceWarn = 0.6

// PeriodRange is a statement period surfaced in run metadata.
type PeriodRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Meta describes how a parse run went. It travels next to the record so
// callers can judge the result without inspecting it.
type Meta struct {
	Pages              int                `json:"pages"`
	OCRUsed            bool               `json:"ocr_used"`
	ProcessingMS       int64              `json:"processing_ms"`
	DetectedDocType    string             `json:"detected_doc_type"`
	DocTypeInternal    string             `json:"doc_type_internal"`
	DocTypeScores      map[string]int     `json:"doc_type_scores"`
	DocTypeConfidence  float64            `json:"doc_type_confidence"`
	DocTypeConfidences map[string]float64 `json:"doc_type_confidences,omitempty"`
	TextSource         string             `json:"text_source"`
	TextLen            int                `json:"text_len"`
	DocTypeForced      bool               `json:"doc_type_forced,omitempty"`
	RequestedDocType   string             `json:"requested_doc_type,omitempty"`
	ParserVersion      string             `json:"parser_version,omitempty"`

	InvoiceQuality  *parse.InvoiceQuality `json:"invoice_quality,omitempty"`
	GstrLowCoverage bool                  `json:"gstr_low_coverage,omitempty"`

	Gstr3bParserVersion string `json:"gstr3b_parser_version,omitempty"`

	NormalizedTransactionCount int          `json:"normalized_transaction_count,omitempty"`
	StatementPeriod            *PeriodRange `json:"statement_period,omitempty"`
	BankProfile                string       `json:"bank_profile,omitempty"`
	ReconciliationRate         *float64     `json:"reconciliation_rate,omitempty"`
	ClosingDrift               *float64     `json:"closing_drift,omitempty"`
	BalanceWarnings            []string     `json:"balance_warnings,omitempty"`
}

// Service wires the extraction, detection and parsing stages together.
// Build one at startup and share it; it is safe for concurrent use.
type Service struct {
	cfg       *config.Config
	logger    *slog.Logger
	detector  *detect.Detector
	extractor *extract.Service
	policies  *policy.Store
}

// New builds the pipeline. The bank policy file named by the config is
// loaded eagerly so a broken policy fails startup, not the first statement.
func New(cfg *config.Config, logger *slog.Logger, extractOpts ...extract.Option) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		cfg:       cfg,
		logger:    logger,
		detector:  detect.New(),
		extractor: extract.NewService(extractOpts...),
	}
	if cfg.Bank.PolicyPath != "" {
		store, err := policy.Load(cfg.Bank.PolicyPath)
		if err != nil {
			return nil, fmt.Errorf("pipeline: load bank policy: %w", err)
		}
		s.policies = store
	}
	return s, nil
}

// ParseOne parses one uploaded document and returns the typed record plus
// run metadata. Unparseable input degrades to an "unknown" record with a
// warning; the error surface is reserved for infrastructure failures.
func (s *Service) ParseOne(ctx context.Context, filename string, data []byte, forcedType string) (any, Meta) {
	start := time.Now()

	// Pre-parsed JSON uploads (the GSTR-2B portal export) short-circuit
	// text extraction entirely.
	if strings.HasSuffix(strings.ToLower(filename), ".json") {
		if record, meta, ok := s.parseJSONDocument(data); ok {
			meta.ProcessingMS = time.Since(start).Milliseconds()
			s.logger.InfoContext(ctx, "parsed pre-structured json document",
				slog.String("filename", filename),
				slog.String("doc_type", meta.DetectedDocType))
			return record, meta
		}
	}

	ext, err := s.extractor.Extract(ctx, data, filename)
	if err != nil {
		s.logger.WarnContext(ctx, "text extraction failed", slog.String("filename", filename), slog.Any("error", err))
	}
	cleaned := extract.Normalize(ext.RawText)
	page1 := extract.PageOne(ext.RawText)

	var (
		docType detect.DocType
		display string
		scores  map[detect.DocType]int
		confs   map[detect.DocType]float64
		conf    float64
		forced  bool
	)
	requested := strings.ToLower(strings.TrimSpace(forcedType))
	if t, ok := detect.ResolveForced(forcedType); ok {
		docType, display, forced = t, requested, true
		scores = map[detect.DocType]int{t: 5}
		confs = map[detect.DocType]float64{t: 1.0}
		conf = 1.0
	} else {
		res := s.detector.Detect(cleaned)
		docType, scores, confs = res.Best, res.Scores, res.Confidences
		conf = confs[docType]
		docType, conf = applyFilenameBoosts(filename, docType, conf, scores, confs)
		if conf < s.cfg.Detection.ConfidenceFloor {
			docType = detect.Unknown
		}
		display = string(docType)
	}

	meta := Meta{
		Pages:              countPages(ext.RawText),
		OCRUsed:            ext.OCRUsed,
		DetectedDocType:    display,
		DocTypeInternal:    string(docType),
		DocTypeScores:      stringScores(scores),
		DocTypeConfidence:  conf,
		DocTypeConfidences: stringConfidences(confs),
		TextSource:         ext.Source,
		TextLen:            len(cleaned),
		DocTypeForced:      forced,
	}
	if forced && requested != string(docType) {
		meta.RequestedDocType = requested
	}

	record, docType := s.route(ctx, docType, filename, data, ext.RawText, cleaned, page1, conf, &meta)
	meta.DocTypeInternal = string(docType)
	if !forced {
		meta.DetectedDocType = string(docType)
	}

	s.applyConfidenceWarnings(docType, record, conf, &meta)

	meta.ProcessingMS = time.Since(start).Milliseconds()
	s.logger.InfoContext(ctx, "parsed document",
		slog.String("filename", filename),
		slog.String("doc_type", string(docType)),
		slog.Float64("confidence", conf),
		slog.String("text_source", ext.Source),
		slog.Int("text_len", meta.TextLen),
		slog.Int64("processing_ms", meta.ProcessingMS))
	return record, meta
}

// route dispatches to the per-type parser. It may downgrade the type to
// unknown when the routed parser cannot take the input.
func (s *Service) route(ctx context.Context, docType detect.DocType, filename string, data []byte, rawText, cleaned, page1 string, conf float64, meta *Meta) (any, detect.DocType) {
	textOrRaw := rawText
	if strings.TrimSpace(textOrRaw) == "" {
		textOrRaw = cleaned
	}

	switch docType {
	case detect.Invoice:
		inv := parse.ApplyInvoiceFallbacks(s.parseInvoice(cleaned, false), textOrRaw)
		q := parse.EvaluateInvoiceQuality(inv)
		meta.InvoiceQuality = &q
		return inv, docType
	case detect.GSTInvoice:
		inv := parse.ApplyInvoiceFallbacks(s.parseInvoice(cleaned, true), textOrRaw)
		q := parse.EvaluateInvoiceQuality(inv)
		meta.InvoiceQuality = &q
		return inv, docType
	case detect.Receipt:
		if s.cfg.Parse.HindiRules {
			return parse.ParseReceiptHindi(cleaned), docType
		}
		return parse.ParseReceipt(cleaned), docType
	case detect.UtilityBill:
		if s.cfg.Parse.HindiRules {
			return parse.ParseUtilityBillHindi(cleaned), docType
		}
		return parse.ParseUtilityBill(cleaned), docType
	case detect.EwayBill:
		if s.cfg.Parse.HindiRules {
			return parse.ParseEwayBillHindi(cleaned), docType
		}
		return parse.ParseEwayBill(cleaned), docType
	case detect.BankStatement:
		return s.parseBank(rawText, cleaned, page1, conf, meta), docType
	case detect.Gstr:
		g := parse.ParseGstr(cleaned)
		if parse.GstrQualityScore(g) < 3 {
			g.Warnings = append(g.Warnings, "Low coverage – likely wrong doc type.")
			meta.GstrLowCoverage = true
		}
		return g, docType
	case detect.Gstr3b:
		g := parse.ParseGstr3b(textOrRaw)
		meta.Gstr3bParserVersion = g.ParserVersion
		return g, docType
	case detect.Gstr1:
		return parse.ParseGstr1(textOrRaw), docType
	case detect.Gstr2b:
		g, err := parse.DecodeGstr2b(data)
		if err != nil {
			s.logger.WarnContext(ctx, "gstr2b decode failed", slog.String("filename", filename), slog.Any("error", err))
			return unknownRecord(), detect.Unknown
		}
		return g, docType
	case detect.SalesRegister:
		return s.parseRegister(ctx, filename, data, cleaned, parse.SalesRegister), docType
	case detect.PurchaseRegister:
		return s.parseRegister(ctx, filename, data, cleaned, parse.PurchaseRegister), docType
	default:
		return unknownRecord(), detect.Unknown
	}
}

// parseInvoice picks the invoice rule tables. The Devanagari tables cover
// both scripts, so they replace the plain and GST variants wholesale when
// Hindi rules are on.
func (s *Service) parseInvoice(cleaned string, gst bool) *parse.Invoice {
	switch {
	case s.cfg.Parse.HindiRules:
		return parse.ParseInvoiceHindi(cleaned)
	case gst:
		return parse.ParseGSTInvoice(cleaned)
	default:
		return parse.ParseInvoice(cleaned)
	}
}

// parseRegister prefers the structured CSV/XLSX readers when the filename
// says so and falls back to the text scanner otherwise.
func (s *Service) parseRegister(ctx context.Context, filename string, data []byte, cleaned string, kind parse.RegisterKind) *parse.Register {
	low := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(low, ".csv"):
		reg, err := parse.ParseRegisterCSV(data, kind)
		if err == nil {
			return reg
		}
		s.logger.WarnContext(ctx, "register csv parse failed, falling back to text scan",
			slog.String("filename", filename), slog.Any("error", err))
	case strings.HasSuffix(low, ".xlsx"):
		reg, err := parse.ParseRegisterXLSX(data, kind)
		if err == nil {
			return reg
		}
		s.logger.WarnContext(ctx, "register xlsx parse failed, falling back to text scan",
			slog.String("filename", filename), slog.Any("error", err))
	}
	if kind == parse.SalesRegister {
		return parse.ParseSalesRegister(cleaned)
	}
	return parse.ParsePurchaseRegister(cleaned)
}

// parseBank parses and then normalizes a statement, folding the
// normalizer's view of the period, totals and warnings back into the
// record and the run metadata.
func (s *Service) parseBank(rawText, cleaned, page1 string, conf float64, meta *Meta) *parse.BankStatement {
	stmt := parse.ParseBankStatement(cleaned, conf)

	profile := policy.Generic()
	if s.policies != nil {
		profile = s.policies.Pick(page1)
	}

	res := bank.Normalize(bank.Input{
		OCRText:        rawText,
		Transactions:   stmt.Transactions,
		OpeningBalance: stmt.OpeningBalance,
		ClosingBalance: stmt.ClosingBalance,
	}, profile)

	stmt.Transactions = res.Transactions
	stmt.Totals = res.Totals
	stmt.OpeningBalance = res.OpeningBalance
	stmt.ClosingBalance = res.ClosingBalance
	if res.PeriodStart != "" {
		stmt.PeriodStart = res.PeriodStart
		stmt.PeriodEnd = res.PeriodEnd
	}

	// The normalizer re-derives balance drift; drop the raw parser's take.
	kept := stmt.Warnings[:0]
	for _, w := range stmt.Warnings {
		if !strings.Contains(w, "Balance drift detected") {
			kept = append(kept, w)
		}
	}
	stmt.Warnings = dedupe(append(kept, res.Warnings...))

	meta.NormalizedTransactionCount = res.Totals.Count
	meta.StatementPeriod = &PeriodRange{From: res.PeriodStart, To: res.PeriodEnd}
	meta.BankProfile = res.ProfileName
	meta.ReconciliationRate = f64ptr(res.ReconciliationRate)
	meta.ClosingDrift = f64ptr(res.ClosingDrift)
	meta.BalanceWarnings = res.Warnings
	return stmt
}

// parseJSONDocument handles uploads that are already structured records.
// Anything without a doc_type field falls through to text extraction.
func (s *Service) parseJSONDocument(data []byte) (any, Meta, bool) {
	var sniff struct {
		DocType string `json:"doc_type"`
		Meta    struct {
			ParserVersion string `json:"parser_version"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(data, &sniff); err != nil || sniff.DocType == "" {
		return nil, Meta{}, false
	}

	docType := strings.ToLower(strings.TrimSpace(sniff.DocType))
	var record any
	if t, ok := detect.ResolveForced(docType); ok && t == detect.Gstr2b {
		g, err := parse.DecodeGstr2b(data)
		if err != nil {
			return nil, Meta{}, false
		}
		record = g
		docType = string(t)
	} else {
		var generic map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, Meta{}, false
		}
		record = generic
	}

	version := sniff.Meta.ParserVersion
	if version == "" {
		version = "unknown"
	}
	meta := Meta{
		Pages:             1,
		DetectedDocType:   docType,
		DocTypeInternal:   docType,
		DocTypeScores:     map[string]int{docType: 10},
		DocTypeConfidence: 1.0,
		TextSource:        "json_file",
		TextLen:           len(data),
		ParserVersion:     version,
	}
	return record, meta, true
}

// applyConfidenceWarnings adds the post-parse sanity warnings: thin bank
// statements and classifications the detector was not sure about.
func (s *Service) applyConfidenceWarnings(docType detect.DocType, record any, conf float64, meta *Meta) {
	if stmt, ok := record.(*parse.BankStatement); ok && docType == detect.BankStatement {
		if len(stmt.Transactions) < 10 {
			stmt.Warnings = append(stmt.Warnings, "Parsed fewer than 10 transactions")
		}
		if conf < bankLowConfidenceWarn {
			stmt.Warnings = append(stmt.Warnings, lowConfidenceWarning(conf))
		}
		if len(stmt.Transactions) < 5 {
			stmt.Warnings = append(stmt.Warnings, "Too few transactions – likely wrong document type.")
			meta.ReconciliationRate = nil
			meta.ClosingDrift = nil
		}
		// The statement parser raises its own thin-statement warnings.
		stmt.Warnings = dedupe(stmt.Warnings)
		return
	}
	if conf < s.cfg.Detection.LowConfidenceWarn {
		appendWarnings(record, lowConfidenceWarning(conf))
	}
}

// applyFilenameBoosts nudges detection with filename hints. GSTR-1 exports
// and register spreadsheets are often too tabular for text signals alone.
func applyFilenameBoosts(filename string, docType detect.DocType, conf float64, scores map[detect.DocType]int, confs map[detect.DocType]float64) (detect.DocType, float64) {
	low := strings.ToLower(filename)

	boost := func(t detect.DocType) (detect.DocType, float64) {
		scores[t] += 5
		if scores[t] > scores[docType] {
			c := confs[t] + 0.3
			if c > 1 {
				c = 1
			}
			return t, c
		}
		return docType, conf
	}

	switch {
	case strings.Contains(low, "gstr1") || strings.Contains(low, "gstr-1") || strings.Contains(low, "gstr_1"):
		return boost(detect.Gstr)
	case strings.Contains(low, "sales") && (strings.Contains(low, "register") || strings.Contains(low, "csv")):
		return boost(detect.SalesRegister)
	case strings.Contains(low, "purchase") && (strings.Contains(low, "register") || strings.Contains(low, "csv")):
		return boost(detect.PurchaseRegister)
	}
	return docType, conf
}

func lowConfidenceWarning(conf float64) string {
	return fmt.Sprintf("Low classification confidence (%.2f)", conf)
}

// appendWarnings attaches warnings to whichever record type came out of
// routing. Unrecognized record shapes are left alone.
func appendWarnings(record any, warnings ...string) {
	switch r := record.(type) {
	case *parse.Invoice:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.Receipt:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.UtilityBill:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.EwayBill:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.BankStatement:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.Gstr:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.Gstr1:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.Gstr3b:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.Gstr2b:
		r.Warnings = append(r.Warnings, warnings...)
	case *parse.Register:
		r.Warnings = append(r.Warnings, warnings...)
	}
}

func unknownRecord() *parse.Invoice {
	return &parse.Invoice{
		Taxes:     []parse.TaxLine{},
		LineItems: []parse.LineItem{},
		Warnings:  []string{unknownDocWarning},
	}
}

func countPages(raw string) int {
	if strings.TrimSpace(raw) == "" {
		return 1
	}
	return strings.Count(raw, "\f") + 1
}

func stringScores(in map[detect.DocType]int) map[string]int {
	out := make(map[string]int, len(in))
	for t, v := range in {
		out[string(t)] = v
	}
	return out
}

func stringConfidences(in map[detect.DocType]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for t, v := range in {
		out[string(t)] = v
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func f64ptr(v float64) *float64 { return &v }
