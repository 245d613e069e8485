package parse

import (
	"regexp"
	"strings"
)

var (
	ewbNoRE         = regexp.MustCompile(`(?i)\bEway\s*Bill\s*(?:No\.?|Number|#)?\s*[:\-]?\s*([A-Z0-9]{12})\b`)
	ewbDateRE       = regexp.MustCompile(`\b(?:[Ee][Ww]ay\s*[Bb]ill\s*)?[Dd]ate\s*[:\-]?\s*([0-9]{2}[-/.][0-9]{2}[-/.][0-9]{4})\b`)
	ewbValidRE      = regexp.MustCompile(`(?i)\b(?:Valid\s*until|Valid\s*till)\s*[:\-]?\s*([0-9]{2}[-/.][0-9]{2}[-/.][0-9]{4})\b`)
	ewbVehicleRE    = regexp.MustCompile(`(?i)\b(?:Vehicle\s*No\.?|Veh\.?\s*No\.?)\s*[:\-]?\s*([A-Z]{2}[0-9]{2}[A-Z]{2}[0-9]{4})\b`)
	ewbTransGSTINRE = regexp.MustCompile(`(?i)\b(?:Transporter\s*GSTIN|Trans\s*GSTIN)\s*[:\-]?\s*([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z])\b`)
	ewbDriverRE     = regexp.MustCompile(`(?i)\b(?:Driver\s*Name|Driver)\s*[:\-]?\s*([A-Za-z\s]+)\b`)
	ewbMobileRE     = regexp.MustCompile(`(?i)\b(?:Driver\s*Mobile|Driver\s*Phone)\s*[:\-]?\s*([0-9]{10})\b`)
	ewbDistanceRE   = regexp.MustCompile(`(?i)\b(?:Distance|Dist)\s*[:\-]?\s*([0-9]+(?:\.[0-9]+)?)\s*(?:km|kms|kilometers?)\b`)
	ewbFromRE       = regexp.MustCompile(`(?i)\b(?:From|Origin)\s*[:\-]?\s*([A-Za-z\s,]+)\b`)
	ewbToRE         = regexp.MustCompile(`(?i)\b(?:To|Destination)\s*[:\-]?\s*([A-Za-z\s,]+)\b`)
	ewbInvNoRE      = regexp.MustCompile(`(?i)\b(?:Invoice\s*No\.?|Inv\.?)\s*[:\-]?\s*([A-Z0-9\-]+)\b`)
	ewbInvDateRE    = regexp.MustCompile(`(?i)\b(?:Invoice\s*Date|Inv\s*Date)\s*[:\-]?\s*([0-9]{2}[-/.][0-9]{2}[-/.][0-9]{4})\b`)
	ewbSupplyRE     = regexp.MustCompile(`(?i)\b(?:Supply\s*Type|Type\s*of\s*Supply)\s*[:\-]?\s*(Regular|Outward|Inward|Import|Export)\b`)
)

// ParseEwayBill extracts transport document details: bill identity,
// vehicle, driver, route and the referenced invoice.
func ParseEwayBill(text string) *EwayBill {
	e := &EwayBill{Warnings: []string{}}

	field := func(re *regexp.Regexp, conf float64, normalize bool) *Field {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		val := strings.TrimSpace(m[1])
		if normalize {
			val = normalizeDate(val)
		}
		return &Field{Value: val, Confidence: conf}
	}

	e.EwayBillNumber = field(ewbNoRE, 0.9, false)
	e.EwayBillDate = field(ewbDateRE, 0.8, true)
	e.ValidUntil = field(ewbValidRE, 0.8, true)
	e.VehicleNumber = field(ewbVehicleRE, 0.9, false)
	e.TransporterGSTIN = field(ewbTransGSTINRE, 0.9, false)
	e.DriverName = field(ewbDriverRE, 0.8, false)
	e.DriverMobile = field(ewbMobileRE, 0.9, false)
	e.DistanceKm = field(ewbDistanceRE, 0.8, false)
	e.FromPlace = field(ewbFromRE, 0.8, false)
	e.ToPlace = field(ewbToRE, 0.8, false)
	e.InvoiceNumber = field(ewbInvNoRE, 0.9, false)
	e.InvoiceDate = field(ewbInvDateRE, 0.8, true)
	e.SupplyType = field(ewbSupplyRE, 0.8, false)

	gstins := GSTINPattern.FindAllString(text, -1)
	if len(gstins) > 0 {
		e.Seller.GSTIN = gstins[0]
	}
	if len(gstins) > 1 {
		e.Buyer.GSTIN = gstins[1]
	}
	return e
}
