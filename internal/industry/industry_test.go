package industry

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"it", "Poszukujemy programisty Java do zespołu backend.", "IT"},
		{"it case insensitive", "SENIOR PYTHON DEVELOPER", "IT"},
		{"finance", "Samodzielna księgowa, pełna księgowość i podatki.", "Finanse"},
		{"marketing", "Specjalista SEO i kampanie Google Ads", "Marketing"},
		{"sales", "Handlowiec B2B, negocjacje z klientami", "Sprzedaż"},
		{"hr", "Rekruter, kadry i płace, onboarding", "HR"},
		{"logistics", "Pracownik magazynu, obsługa wózka", "Logistyka"},
		{"medicine", "Pielęgniarka na oddział, praca w szpitalu", "Medycyna"},
		{"customer service", "Konsultant infolinia, obsługa reklamacji", "Obsługa klienta"},
		{"no match", "Zupełnie inna treść bez branżowych słów.", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectPriorityOrder(t *testing.T) {
	// Text matching both IT and HR vocabularies resolves to the earlier
	// category.
	if got := Detect("rekrutacja programistów python"); got != "IT" {
		t.Errorf("Detect() = %q, want IT", got)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 10 {
		t.Fatalf("len(Names()) = %d, want 10", len(names))
	}
	if names[0] != "IT" {
		t.Errorf("Names()[0] = %q, want IT", names[0])
	}
}

func TestValid(t *testing.T) {
	if !Valid("IT") || !Valid("finanse") {
		t.Error("expected known categories to validate")
	}
	if Valid("Gastronomia") {
		t.Error("unknown category validated")
	}
}
