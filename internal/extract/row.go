package extract

import (
	"strings"

	"cardtrack/internal/core"
)

// columnLayout maps the semantic fields onto CSV column indexes.
// A value of -1 means the column is absent.
type columnLayout struct {
	date     int
	merchant int
	amount   int
	currency int
}

// resolveColumns derives the layout from a header row when present,
// otherwise assumes the positional convention date, merchant, amount.
func resolveColumns(header []string) columnLayout {
	layout := columnLayout{date: 0, merchant: 1, amount: 2, currency: -1}
	if len(header) == 0 {
		return layout
	}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "fecha", "date", "fecha de operacion", "fecha de operación":
			layout.date = i
		case "comercio", "merchant", "descripcion", "descripción", "detalle", "concepto":
			layout.merchant = i
		case "importe", "monto", "amount", "total":
			layout.amount = i
		case "moneda", "currency", "divisa":
			layout.currency = i
		}
	}
	return layout
}

// FromRow parses one tabular row into a candidate transaction. Rows
// missing a parseable date or amount are skipped.
func (e *Extractor) FromRow(row []string, layout columnLayout) (core.Transaction, bool) {
	date, ok := parseDate(cell(row, layout.date), e.ReferenceYear)
	if !ok {
		return core.Transaction{}, false
	}

	amountCell := cell(row, layout.amount)
	amount, err := core.ParseStatementAmount(amountCell)
	if err != nil {
		return core.Transaction{}, false
	}

	merchant := collapseSpaces(cell(row, layout.merchant))
	if merchant == "" {
		return core.Transaction{}, false
	}

	isDollar := isDollarMarker(amountCell) || isDollarMarker(merchant)
	if layout.currency >= 0 {
		currency := strings.ToLower(cell(row, layout.currency))
		isDollar = strings.Contains(currency, "usd") ||
			strings.Contains(currency, "u$s") ||
			strings.Contains(currency, "dolar") ||
			strings.Contains(currency, "dólar")
	}

	return core.Transaction{
		Date:     date,
		Merchant: merchant,
		Amount:   amount,
		IsDollar: isDollar,
	}, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
