package parse

import (
	"regexp"
	"strings"
)

// Place and name captures use horizontal whitespace only; the greedy class
// would otherwise run across line breaks into the next label.
var (
	ewbNoHindiRE         = regexp.MustCompile(`(?i)(?:ई[-\s]*वे\s*बिल|वे\s*बिल|\beway\s*bill)\s*(?:संख्या|नंबर|no\.?|number|#)?\s*[:\-]?\s*([A-Z0-9]{12})`)
	ewbDateHindiRE       = regexp.MustCompile(`(?i)(?:ई[-\s]*वे\s*बिल|वे\s*बिल)?\s*(?:तिथि|दिनांक|\bdate\b)\s*[:\-]?\s*([0-9]{2}[-/.][0-9]{2}[-/.][0-9]{4})`)
	ewbValidHindiRE      = regexp.MustCompile(`(?i)(?:वैध\s*(?:जब\s*)?तक|\bvalid\s*(?:until|till)\b)\s*[:\-]?\s*([0-9]{2}[-/.][0-9]{2}[-/.][0-9]{4})`)
	ewbVehicleHindiRE    = regexp.MustCompile(`(?i)(?:वाहन\s*(?:संख्या|नंबर)|\b(?:vehicle\s*no\.?|veh\.?\s*no\.?))\s*[:\-]?\s*([A-Z]{2}[0-9]{2}[A-Z]{2}[0-9]{4})`)
	ewbTransGSTINHindiRE = regexp.MustCompile(`(?i)(?:परिवहनकर्ता\s*जीएसटीआईएन|\b(?:transporter\s*gstin|trans\s*gstin)\b)\s*[:\-]?\s*([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z])`)
	ewbDriverHindiRE     = regexp.MustCompile(`(?i)(?:चालक\s*(?:का\s*)?नाम|\b(?:driver\s*name|driver)\b)\s*[:\-]?\s*([A-Za-z \t\x{0900}-\x{097F}]+)`)
	ewbMobileHindiRE     = regexp.MustCompile(`(?i)(?:चालक\s*(?:मोबाइल|फोन)|\bdriver\s*(?:mobile|phone)\b)\s*[:\-]?\s*([0-9]{10})`)
	ewbDistanceHindiRE   = regexp.MustCompile(`(?i)(?:दूरी|\b(?:distance|dist)\b)\s*[:\-]?\s*([0-9]+(?:\.[0-9]+)?)\s*(?:किमी|km|kms|kilometers?)`)
	ewbFromHindiRE       = regexp.MustCompile(`(?i)(?:मूल\s*स्थान|से|\b(?:from|origin)\b)\s*[:\-]?\s*([A-Za-z \t,\x{0900}-\x{097F}]+)`)
	ewbToHindiRE         = regexp.MustCompile(`(?i)(?:गंतव्य|तक|\b(?:to|destination)\b)\s*[:\-]?\s*([A-Za-z \t,\x{0900}-\x{097F}]+)`)
	ewbInvNoHindiRE      = regexp.MustCompile(`(?i)(?:चालान\s*(?:संख्या|नंबर)|बिल\s*नंबर|\b(?:invoice\s*no\.?|inv\.?))\s*[:\-]?\s*([A-Z0-9\-]+)`)
	ewbInvDateHindiRE    = regexp.MustCompile(`(?i)(?:चालान\s*तिथि|बिल\s*दिनांक|\b(?:invoice\s*date|inv\s*date)\b)\s*[:\-]?\s*([0-9]{2}[-/.][0-9]{2}[-/.][0-9]{4})`)
)

// ParseEwayBillHindi extracts transport document details using the
// Devanagari rule tables, falling back to the plain tables field by field.
func ParseEwayBillHindi(text string) *EwayBill {
	e := &EwayBill{Warnings: []string{}}

	field := func(hindi, plain *regexp.Regexp, conf float64, normalize bool) *Field {
		m := hindi.FindStringSubmatch(text)
		if m == nil {
			m = plain.FindStringSubmatch(text)
		}
		if m == nil {
			return nil
		}
		val := strings.TrimSpace(m[1])
		if val == "" {
			return nil
		}
		if normalize {
			val = normalizeDate(val)
		}
		return &Field{Value: val, Confidence: conf}
	}

	e.EwayBillNumber = field(ewbNoHindiRE, ewbNoRE, 0.9, false)
	e.EwayBillDate = field(ewbDateHindiRE, ewbDateRE, 0.8, true)
	e.ValidUntil = field(ewbValidHindiRE, ewbValidRE, 0.8, true)
	e.VehicleNumber = field(ewbVehicleHindiRE, ewbVehicleRE, 0.9, false)
	e.TransporterGSTIN = field(ewbTransGSTINHindiRE, ewbTransGSTINRE, 0.9, false)
	e.DriverName = field(ewbDriverHindiRE, ewbDriverRE, 0.8, false)
	e.DriverMobile = field(ewbMobileHindiRE, ewbMobileRE, 0.9, false)
	e.DistanceKm = field(ewbDistanceHindiRE, ewbDistanceRE, 0.8, false)
	e.FromPlace = field(ewbFromHindiRE, ewbFromRE, 0.8, false)
	e.ToPlace = field(ewbToHindiRE, ewbToRE, 0.8, false)
	e.InvoiceNumber = field(ewbInvNoHindiRE, ewbInvNoRE, 0.9, false)
	e.InvoiceDate = field(ewbInvDateHindiRE, ewbInvDateRE, 0.8, true)
	e.SupplyType = field(ewbSupplyRE, ewbSupplyRE, 0.8, false)

	gstins := GSTINPattern.FindAllString(text, -1)
	if len(gstins) > 0 {
		e.Seller.GSTIN = gstins[0]
	}
	if len(gstins) > 1 {
		e.Buyer.GSTIN = gstins[1]
	}
	return e
}
