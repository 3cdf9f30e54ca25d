// Package industry classifies posting text into a fixed category set via
// substring matching. Categories are tested in a fixed priority order and
// the first match wins.
package industry

import "strings"

type category struct {
	Name     string
	Keywords []string
}

// categories is ordered by priority: more specific vocabularies first so a
// generic keyword lower down cannot shadow them.
var categories = []category{
	{Name: "IT", Keywords: []string{
		"programista", "developer", "software", "devops", "frontend",
		"backend", "fullstack", "python", "java", "golang", "javascript",
		"kubernetes", "aws", "azure", "sql", "api", "tester", "qa",
	}},
	{Name: "Finanse", Keywords: []string{
		"księgowość", "księgowa", "finanse", "finansowy", "bank", "kredyt",
		"audyt", "controlling", "podatki", "faktury", "analityk finansowy",
	}},
	{Name: "Marketing", Keywords: []string{
		"marketing", "seo", "sem", "social media", "kampanie", "content",
		"branding", "copywriter", "e-commerce", "google ads",
	}},
	{Name: "Sprzedaż", Keywords: []string{
		"sprzedaż", "sprzedawca", "handlowiec", "doradca klienta", "sales",
		"negocjacje", "pozyskiwanie klientów", "crm",
	}},
	{Name: "HR", Keywords: []string{
		"rekrutacja", "rekruter", "kadry", "płace", "onboarding",
		"talent acquisition", "human resources",
	}},
	{Name: "Logistyka", Keywords: []string{
		"logistyka", "magazyn", "spedycja", "transport", "łańcuch dostaw",
		"zaopatrzenie", "kierowca",
	}},
	{Name: "Produkcja", Keywords: []string{
		"produkcja", "operator", "utrzymanie ruchu", "montaż", "lean",
		"jakości", "maszyn",
	}},
	{Name: "Medycyna", Keywords: []string{
		"lekarz", "pielęgniarka", "medyczny", "farmaceuta", "pacjent",
		"przychodnia", "szpital", "rehabilitacja",
	}},
	{Name: "Edukacja", Keywords: []string{
		"nauczyciel", "lektor", "szkolenia", "edukacja", "trener",
		"wykładowca", "kurs",
	}},
	{Name: "Obsługa klienta", Keywords: []string{
		"obsługa klienta", "call center", "infolinia", "helpdesk",
		"wsparcie klienta", "reklamacje",
	}},
}

// Detect returns the first category whose keyword appears in text, or ""
// when nothing matches. Matching is case-insensitive substring scan.
func Detect(text string) string {
	lowered := strings.ToLower(text)
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lowered, kw) {
				return cat.Name
			}
		}
	}
	return ""
}

// Names lists the category names in priority order.
func Names() []string {
	out := make([]string, len(categories))
	for i, cat := range categories {
		out[i] = cat.Name
	}
	return out
}

// Valid reports whether name is a known category.
func Valid(name string) bool {
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, name) {
			return true
		}
	}
	return false
}
