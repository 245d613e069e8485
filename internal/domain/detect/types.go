package detect

import "strings"

// DocType labels a supported document family.
type DocType string

// Document types the detector can score. Gstr1/Gstr3b/Gstr2b are only ever
// selected by a caller-forced type or filename hints; free text scores into
// the generic Gstr bucket.
const (
	Invoice          DocType = "invoice"
	GSTInvoice       DocType = "gst_invoice"
	Receipt          DocType = "receipt"
	UtilityBill      DocType = "utility_bill"
	BankStatement    DocType = "bank_statement"
	EwayBill         DocType = "eway_bill"
	Gstr             DocType = "gstr"
	Gstr1            DocType = "gstr1"
	Gstr3b           DocType = "gstr3b"
	Gstr2b           DocType = "gstr2b"
	PurchaseRegister DocType = "purchase_register"
	SalesRegister    DocType = "sales_register"
	BirthCertificate DocType = "birth_certificate"
	Unknown          DocType = "unknown"
)

// Result is the outcome of a detection pass.
type Result struct {
	Best        DocType
	Scores      map[DocType]int
	Confidences map[DocType]float64
}

// Supported reports whether a type routes to a real parser.
func Supported(t DocType) bool {
	switch t {
	case Invoice, GSTInvoice, Receipt, UtilityBill, BankStatement, EwayBill,
		Gstr, Gstr1, Gstr3b, Gstr2b, PurchaseRegister, SalesRegister:
		return true
	}
	return false
}

// Aliases accepted for caller-forced document types.
var aliases = map[string]DocType{
	"gst_return":        Gstr,
	"gst_form":          Gstr,
	"gst":               GSTInvoice,
	"gstr-3b":           Gstr3b,
	"gstr3b":            Gstr3b,
	"gstr-1":            Gstr1,
	"gstr1":             Gstr1,
	"gstr-2b":           Gstr2b,
	"gstr2b":            Gstr2b,
	"purchase-register": PurchaseRegister,
	"sales-register":    SalesRegister,
}

// ResolveForced maps a caller-supplied type label to a supported DocType.
// The second return is false when the label is unknown or unparseable.
func ResolveForced(label string) (DocType, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return Unknown, false
	}
	if t, ok := aliases[label]; ok {
		return t, true
	}
	t := DocType(label)
	if Supported(t) {
		return t, true
	}
	return Unknown, false
}
