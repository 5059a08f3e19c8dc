// Package categorize assigns categories to transactions by matching
// merchant text against ranked keyword rules. Matching is case and accent
// insensitive so "Panadería" and "PANADERIA" hit the same rule.
package categorize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cardtrack/internal/core"
)

// Rule binds a category name to the merchant keywords that select it.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules is the seeded keyword table, in priority order. Earlier
// rules win when a merchant matches more than one.
var DefaultRules = []Rule{
	{Category: "Entretenimiento", Keywords: []string{"google", "youtube", "netflix", "spotify", "steam", "playstation", "xbox", "hoyts", "cinema", "cine"}},
	{Category: "Educación", Keywords: []string{"udemy", "coursera", "skillshare", "domestika", "platzi"}},
	{Category: "Compras", Keywords: []string{"mercadolibre", "amazon", "alibaba", "zara", "nike", "adidas", "jumbo", "carrefour", "coto", "dia tienda", "gift card"}},
	{Category: "Comida y Restaurantes", Keywords: []string{"rappi", "pedidosya", "uber eats", "mcdonalds", "starbucks", "cafe", "restaurant", "panera", "cayena", "supermercado"}},
	{Category: "Tecnología", Keywords: []string{"openai", "chatgpt", "github", "microsoft", "adobe", "dropbox"}},
	{Category: "Transporte", Keywords: []string{"uber", "cabify", "ypf", "shell", "axion", "deheza", "autop"}},
	{Category: "Servicios", Keywords: []string{"edenor", "edesur", "metrogas", "aysa", "telecom", "personal", "movistar", "claro", "naturgy", "arba", "zurich", "municipalidad"}},
	{Category: "Salud", Keywords: []string{"farmacia", "farmacity", "osde", "swiss medical", "galeno"}},
	{Category: "Mascotas", Keywords: []string{"puppis", "pet"}},
	{Category: "Pagos Digitales", Keywords: []string{"merpago", "mercadopago", "paypal", "dlo*"}},
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text and strips diacritics for matching.
func Normalize(s string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

type boundRule struct {
	keyword    string
	categoryID int64
}

// Matcher resolves merchant text to one of an owner's category ids.
type Matcher struct {
	rules     []boundRule
	defaultID int64
}

// NewMatcher binds the seeded keyword rules to an owner's actual
// categories. Keyword rules whose target category does not exist for
// this owner are dropped; their merchants land in the default bucket.
// Every user-defined category additionally matches merchants containing
// its own name.
func NewMatcher(categories []core.Category) *Matcher {
	m := &Matcher{}

	byName := make(map[string]int64, len(categories))
	for _, c := range categories {
		byName[Normalize(c.Name)] = c.ID
		if c.IsDefault {
			m.defaultID = c.ID
		}
	}
	if m.defaultID == 0 {
		for _, c := range categories {
			if strings.Contains(Normalize(c.Name), "otro") {
				m.defaultID = c.ID
				break
			}
		}
	}

	for _, rule := range DefaultRules {
		id, ok := resolveCategory(rule.Category, byName, categories)
		if !ok {
			continue
		}
		for _, kw := range rule.Keywords {
			m.rules = append(m.rules, boundRule{keyword: Normalize(kw), categoryID: id})
		}
	}

	// user-defined categories match by their own name, lowest priority
	for _, c := range categories {
		if c.IsDefault {
			continue
		}
		m.rules = append(m.rules, boundRule{keyword: Normalize(c.Name), categoryID: c.ID})
	}

	return m
}

// resolveCategory finds the owner category for a rule name: exact
// normalized match first, then rule name as substring of a category name.
func resolveCategory(name string, byName map[string]int64, categories []core.Category) (int64, bool) {
	folded := Normalize(name)
	if id, ok := byName[folded]; ok {
		return id, true
	}
	for _, c := range categories {
		if strings.Contains(Normalize(c.Name), folded) {
			return c.ID, true
		}
	}
	return 0, false
}

// Match returns the category id for a merchant. First matching rule in
// priority order wins; merchants matching nothing get the default bucket.
func (m *Matcher) Match(merchant string) int64 {
	folded := Normalize(merchant)
	for _, rule := range m.rules {
		if strings.Contains(folded, rule.keyword) {
			return rule.categoryID
		}
	}
	return m.defaultID
}
