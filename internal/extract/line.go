package extract

import (
	"regexp"
	"strings"

	"cardtrack/internal/core"
)

var (
	// date token at the start of a free-text statement line
	leadingDateRe = regexp.MustCompile(`^(\d{1,2}-[A-Za-z]{3}-\d{2}|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+(.+)$`)
	// decimal amounts anywhere in the line, the last one is the charge
	amountRe = regexp.MustCompile(`-?\d+(?:[.,]\d{3})*[.,]\d+`)
	// 5-digit coupon number printed before the amount
	trailingCouponRe = regexp.MustCompile(`\s+\d{5}$`)
)

// subtotal rows and payment lines that look like transactions but are not
var subtotalMarkers = []string{
	"total titular",
	"total adicional",
	"saldo actual",
	"saldo pendiente",
	"pago minimo",
	"detalle del mes",
	"su pago",
	"transfer financ",
}

func isSubtotalRow(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range subtotalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// isDollarMarker reports whether the text carries an explicit USD token.
// Mastercard prints foreign charges as "MERCHANT (USA,ARS, 600,00)".
func isDollarMarker(text string) bool {
	upper := strings.ToUpper(text)
	return strings.Contains(upper, "USA,") ||
		strings.Contains(upper, "U$S") ||
		strings.Contains(upper, "USD")
}

// FromLine parses one free-text statement line into a candidate
// transaction. The line must open with a date and end with a decimal
// amount; everything between is the merchant, minus the coupon number.
func (e *Extractor) FromLine(line string) (core.Transaction, bool) {
	line = strings.TrimSpace(line)
	if line == "" || isSubtotalRow(line) {
		return core.Transaction{}, false
	}

	m := leadingDateRe.FindStringSubmatch(line)
	if m == nil {
		return core.Transaction{}, false
	}
	date, ok := parseDate(m[1], e.ReferenceYear)
	if !ok {
		return core.Transaction{}, false
	}

	rest := strings.TrimSpace(m[2])
	numbers := amountRe.FindAllString(rest, -1)
	if len(numbers) == 0 {
		return core.Transaction{}, false
	}
	amountStr := numbers[len(numbers)-1]
	amount, err := core.ParseStatementAmount(amountStr)
	if err != nil {
		return core.Transaction{}, false
	}

	merchant := rest[:strings.LastIndex(rest, amountStr)]
	merchant = trailingCouponRe.ReplaceAllString(strings.TrimSpace(merchant), "")
	merchant = collapseSpaces(merchant)
	if merchant == "" {
		return core.Transaction{}, false
	}

	return core.Transaction{
		Date:     date,
		Merchant: merchant,
		Amount:   amount,
		IsDollar: isDollarMarker(rest),
	}, true
}

var (
	balanceRe       = regexp.MustCompile(`(?i)SALDO ACTUAL\s*\$?\s*([\d.,]+)\s*U\$S\s*([\d.,]+)`)
	pendingRe       = regexp.MustCompile(`(?i)SALDO PENDIENTE\s+([\d.,]+)\s+([\d.,]+)`)
	statementDateRe = regexp.MustCompile(`(?i)ESTADO DE CUENTA AL:\s*(\d{1,2}-[A-Za-z]{3}-\d{2})`)
	closingRe       = regexp.MustCompile(`(?i)PROXIMO\s*CIERRE:\s*(\d{1,2}-[A-Za-z]{3}-\d{2})`)
	dueRe           = regexp.MustCompile(`(?i)PROXIMO\s*VENCIMIENTO:\s*(\d{1,2}-[A-Za-z]{3}-\d{2})`)
)

// extractMetadata scans statement header lines for balances and dates.
// First match wins for each field.
func extractMetadata(lines []string) Metadata {
	var meta Metadata
	for _, line := range lines {
		if meta.BalancePesos.Cents == 0 && meta.BalanceDollars.Cents == 0 {
			if m := balanceRe.FindStringSubmatch(line); m != nil {
				meta.BalancePesos, _ = core.ParseStatementAmount(m[1])
				meta.BalanceDollars, _ = core.ParseStatementAmount(m[2])
			}
		}
		if meta.PendingPesos.Cents == 0 && meta.PendingDollars.Cents == 0 {
			if m := pendingRe.FindStringSubmatch(line); m != nil {
				meta.PendingPesos, _ = core.ParseStatementAmount(m[1])
				meta.PendingDollars, _ = core.ParseStatementAmount(m[2])
			}
		}
		if meta.StatementDate.IsEmpty() {
			if m := statementDateRe.FindStringSubmatch(line); m != nil {
				if d, ok := parseDate(m[1], 0); ok {
					meta.StatementDate = d
					meta.Month = d.Month()
					meta.Year = d.Year()
				}
			}
		}
		if meta.ClosingDate.IsEmpty() {
			if m := closingRe.FindStringSubmatch(line); m != nil {
				meta.ClosingDate, _ = parseDate(m[1], 0)
			}
		}
		if meta.DueDate.IsEmpty() {
			if m := dueRe.FindStringSubmatch(line); m != nil {
				meta.DueDate, _ = parseDate(m[1], 0)
			}
		}
	}
	return meta
}
