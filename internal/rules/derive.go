package rules

import (
	"masterdata-web/internal/models"
	"math"
	"strconv"
	"strings"
)

// round rounds to the given number of decimals.
func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// formatNumber renders a number without trailing zeros ("80", "0.08").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// joinParts joins the non-blank parts with single spaces.
func joinParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// caliperFromGSM is the paper thickness in mm estimated from grammage.
func caliperFromGSM(gsm float64) float64 {
	return round(gsm/1000, 3)
}

// deriveItem computes caliper and the display name of paper-like groups.
func deriveItem(row models.Row, group models.Group) {
	switch strings.ToUpper(strings.TrimSpace(group.Name)) {
	case "PAPER", "REEL":
	default:
		return
	}

	gsm, hasGSM := row.Number("gsm")
	if hasGSM && gsm > 0 {
		row["caliper"] = caliperFromGSM(gsm)
	}

	gsmText := ""
	if hasGSM {
		gsmText = formatNumber(gsm) + " GSM"
	}
	name := joinParts(row.String("quality"), gsmText, row.String("manufacturer"), row.String("finish"))
	if name != "" {
		row["itemName"] = name
	}
}

// deriveTool computes total ups and the size-based display name.
func deriveTool(row models.Row, _ models.Group) {
	around, okAround := row.Number("upsAround")
	across, okAcross := row.Number("upsAcross")
	total := 0.0
	if okAround && okAcross {
		total = around * across
		row["totalUps"] = total
	}

	l, okL := row.Number("sizeL")
	w, okW := row.Number("sizeW")
	if !okL || !okW {
		return
	}
	name := formatNumber(l) + " x " + formatNumber(w)
	if h, ok := row.Number("sizeH"); ok && h > 0 {
		name += " x " + formatNumber(h)
	}
	if total > 0 {
		name += " (" + formatNumber(total) + " UPS)"
	}
	row["toolName"] = name
}

// deriveHSN splits the GST rate into its central, state and integrated parts.
func deriveHSN(row models.Row, _ models.Group) {
	gst, ok := row.Number("gstTaxPercentage")
	if !ok {
		return
	}
	row["cgstTaxPercentage"] = round(gst/2, 2)
	row["sgstTaxPercentage"] = round(gst/2, 2)
	row["igstTaxPercentage"] = gst
}
