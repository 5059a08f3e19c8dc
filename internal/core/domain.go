package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

type (
	// Period selects the analytics window.
	Period string

	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	// Transaction is one purchase line parsed out of a statement.
	Transaction struct {
		ID          int64     `json:"id"`
		OwnerID     int64     `json:"-"`
		StatementID int64     `json:"statement_id"`
		CategoryID  *int64    `json:"category_id"`
		Merchant    string    `json:"merchant"`
		Amount      Money     `json:"amount"`
		IsDollar    bool      `json:"is_dollar"`
		Date        Date      `json:"date"`
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"created_at"`

		// Populated on list queries for the presentation layer.
		Category  *Category  `json:"category,omitempty"`
		Statement *Statement `json:"statement,omitempty"`
	}

	// Category is a spend bucket, either seeded or user defined.
	Category struct {
		ID        int64     `json:"id"`
		OwnerID   int64     `json:"-"`
		Name      string    `json:"name"`
		Icon      string    `json:"icon"`
		Color     string    `json:"color"`
		IsDefault bool      `json:"is_default"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Statement groups the transactions imported from one billing-cycle
	// document. Totals are derived sums over its transactions.
	Statement struct {
		ID               int64     `json:"id"`
		OwnerID          int64     `json:"-"`
		Filename         string    `json:"filename"`
		Month            int       `json:"month"`
		Year             int       `json:"year"`
		TotalPesos       Money     `json:"total_pesos"`
		TotalDollars     Money     `json:"total_dollars"`
		TransactionCount int       `json:"transaction_count"`
		DolarRate        float64   `json:"dolar_rate"`
		StatementDate    Date      `json:"statement_date"`
		ClosingDate      Date      `json:"proximo_cierre"`
		DueDate          Date      `json:"proximo_vencimiento"`
		CreatedAt        time.Time `json:"created_at"`
	}

	// Recommendation is an ephemeral insight derived from aggregates.
	// It is never persisted.
	Recommendation struct {
		Type    string `json:"type"` // warning, tip, success, info
		Icon    string `json:"icon"`
		Message string `json:"message"`
	}
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyBatch        = errors.New("no transactions found in file")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
)

// ValidationError reports a rejected input value with its field name so
// handlers can surface field-level messages.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true for optional dates that were never set.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as a "YYYY-MM-DD" string, or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" strings and null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return ErrInvalidDate
	}
	d.Time = t
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Message: "missing or invalid date"}
	}
	if strings.TrimSpace(t.Merchant) == "" {
		return &ValidationError{Field: "merchant", Message: "merchant cannot be empty"}
	}
	if t.Amount.Cents < 0 {
		return &ValidationError{Field: "amount", Message: "amount must be non-negative"}
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name cannot be empty"}
	}
	if len(name) > 100 {
		return &ValidationError{Field: "name", Message: "name too long (max 100 characters)"}
	}
	return nil
}

func (s Statement) Validate() error {
	if s.Month < 1 || s.Month > 12 {
		return &ValidationError{Field: "month", Message: "month must be between 1 and 12"}
	}
	if s.Year < 2000 || s.Year > 2100 {
		return &ValidationError{Field: "year", Message: "year out of range"}
	}
	if s.DolarRate <= 0 {
		return &ValidationError{Field: "dolar_rate", Message: "dolar_rate must be greater than zero"}
	}
	return nil
}

// DefaultCategories is the category set seeded for every new owner.
// "Otros" is the fallback bucket for unmatched merchants and cannot be
// deleted while it is the owner's only category.
var DefaultCategories = []Category{
	{Name: "Comida y Restaurantes", Icon: "🍔", Color: "#ff6b6b"},
	{Name: "Compras", Icon: "🛍️", Color: "#ffd93d"},
	{Name: "Transporte", Icon: "🚗", Color: "#6bcb77"},
	{Name: "Entretenimiento", Icon: "🎬", Color: "#4d96ff"},
	{Name: "Servicios", Icon: "💡", Color: "#ff9f43"},
	{Name: "Salud", Icon: "🏥", Color: "#a66cff"},
	{Name: "Suscripciones", Icon: "📱", Color: "#00d4ff"},
	{Name: "Otros", Icon: "📦", Color: "#778899", IsDefault: true},
}
