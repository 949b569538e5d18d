package services

import (
	"reflect"
	"testing"

	"github.com/codyseavey/pogo-parser/backend/internal/models"
)

var testEntries = []models.SpeciesEntry{
	{ID: "charizard", Name: "Charizard", Dex: 6},
	{ID: "charizard_mega_x", Name: "Mega Charizard X", Dex: 6, IsMega: true},
	{ID: "charizard_mega_y", Name: "Mega Charizard Y", Dex: 6, IsMega: true},
	{ID: "charizard_shadow", Name: "Shadow Charizard", Dex: 6, IsShadow: true},
	{ID: "beedrill", Name: "Beedrill", Dex: 15},
	{ID: "pikachu", Name: "Pikachu", Dex: 25},
	{ID: "pikachu_hat", Name: "Pikachu Hat", Dex: 25, AliasID: "pikachu"},
	{ID: "raichu", Name: "Raichu", Dex: 26},
	{ID: "raichu_alola", Name: "Raichu (Alolan)", Dex: 26},
	{ID: "nidoran_female", Name: "Nidoran♀", Dex: 29},
	{ID: "vulpix", Name: "Vulpix", Dex: 37},
	{ID: "vulpix_alola", Name: "Vulpix (Alolan)", Dex: 37},
	{ID: "ninetales", Name: "Ninetales", Dex: 38},
	{ID: "ninetales_alola", Name: "Ninetales (Alolan)", Dex: 38},
	{ID: "machamp", Name: "Machamp", Dex: 68},
	{ID: "machamp_shadow", Name: "Shadow Machamp", Dex: 68, IsShadow: true},
	{ID: "farfetchd", Name: "Farfetch'd", Dex: 83},
	{ID: "gengar", Name: "Gengar", Dex: 94},
	{ID: "gengar_mega", Name: "Mega Gengar", Dex: 94, IsMega: true},
	{ID: "mr_mime", Name: "Mr. Mime", Dex: 122},
	{ID: "porygon", Name: "Porygon", Dex: 137},
	{ID: "porygon_shadow", Name: "Shadow Porygon", Dex: 137, IsShadow: true},
	{ID: "porygon_z", Name: "Porygon-Z", Dex: 474},
	{ID: "porygon_z_shadow", Name: "Shadow Porygon-Z", Dex: 474, IsShadow: true},
	{ID: "rotom", Name: "Rotom", Dex: 479},
	{ID: "rotom_wash", Name: "Rotom (Wash)", Dex: 479},
	{ID: "rotom_heat", Name: "Rotom (Heat)", Dex: 479},
	{ID: "giratina_altered", Name: "Giratina (Altered)", Dex: 487},
	{ID: "giratina_origin", Name: "Giratina (Origin)", Dex: 487},
	{ID: "flabebe", Name: "Flabébé", Dex: 669},
	{ID: "oricorio_baile", Name: "Oricorio (Baile)", Dex: 741},
	{ID: "oricorio_pom_pom", Name: "Oricorio (Pom-Pom)", Dex: 741},
}

func newTestCatalog(t *testing.T) *models.Catalog {
	t.Helper()
	catalog, err := models.NewCatalog(testEntries)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return catalog
}

// newTestMatcher returns a matcher whose reports are appended to *reports
func newTestMatcher(t *testing.T, reports *[]ResolutionReport) (*SpeciesMatcher, models.Domain) {
	t.Helper()
	catalog := newTestCatalog(t)
	m, err := NewSpeciesMatcher(catalog, MatcherOptions{
		Reporter: func(r ResolutionReport) {
			if reports != nil {
				*reports = append(*reports, r)
			}
		},
	})
	if err != nil {
		t.Fatalf("NewSpeciesMatcher() error = %v", err)
	}
	return m, StandardDomain(catalog)
}

func TestResolveSingleLine(t *testing.T) {
	m, domain := newTestMatcher(t, nil)

	tests := []struct {
		line string
		want string
	}{
		// exact names, any case
		{"Pikachu", "pikachu"},
		{"pikachu", "pikachu"},
		{"GENGAR", "gengar"},
		// diacritics, apostrophes and decorations
		{"Flabébé", "flabebe"},
		{"Flabebe", "flabebe"},
		{"Farfetch’d", "farfetchd"},
		{"Farfetchd", "farfetchd"},
		{"Mr Mime", "mr_mime"},
		{"Mr. Mime", "mr_mime"},
		{"Nidoran Female", "nidoran_female"},
		{"*Pikachu", "pikachu"},
		// costume noise
		{"Pikachu wearing a party hat", "pikachu"},
		// shadow and mega variants escape the standard domain
		{"Shadow Machamp", "machamp_shadow"},
		{"Shadow Charizard", "charizard_shadow"},
		{"Mega Gengar", "gengar_mega"},
		{"Mega Charizard X", "charizard_mega_x"},
		{"Mega Charizard Y", "charizard_mega_y"},
		// forms
		{"Rotom", "rotom"},
		{"Rotom (Wash)", "rotom_wash"},
		{"Wash Rotom", "rotom_wash"},
		{"Alolan Raichu", "raichu_alola"},
		{"Raichu Alola Form", "raichu_alola"},
		{"Raichu", "raichu"},
		{"Giratina (Origin)", "giratina_origin"},
		{"Giratina Origin Forme", "giratina_origin"},
		// form-only and special cases
		{"Origin", "giratina_origin"},
		{"Oricorio Pom-Pom", "oricorio_pom_pom"},
		{"Giratina", "giratina_altered"},
		// alias outside the domain follows to its canonical entry
		{"Pikachu Hat", "pikachu"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := m.Resolve(tt.line, domain)
			if !ok {
				t.Fatalf("Resolve(%q) found nothing, want %s", tt.line, tt.want)
			}
			if got.ID != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.line, got.ID, tt.want)
			}
		})
	}
}

func TestResolveReportsFailures(t *testing.T) {
	tests := []struct {
		line     string
		kind     ReportKind
		severity Severity
	}{
		{"Pikachu Raichu", ReportAmbiguousBaseName, SeverityError},
		{"Mega Charizard", ReportAmbiguousForm, SeverityError},
		{"Mega Beedrill", ReportNoMegaCoverage, SeverityInfo},
		{"Wash Heat", ReportMultipleForms, SeverityError},
		{"Alolan", ReportAmbiguousForm, SeverityError},
		{"Professor Willow", ReportUnmappedSpecialCase, SeverityWarn},
		{"Shadow Giratina", ReportNoFormMatch, SeverityWarn},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var reports []ResolutionReport
			m, domain := newTestMatcher(t, &reports)

			if got, ok := m.Resolve(tt.line, domain); ok {
				t.Fatalf("Resolve(%q) = %s, want no match", tt.line, got.ID)
			}
			if len(reports) != 1 {
				t.Fatalf("Resolve(%q) produced %d reports, want 1", tt.line, len(reports))
			}
			if reports[0].Kind != tt.kind || reports[0].Severity != tt.severity {
				t.Errorf("Resolve(%q) report = %s/%s, want %s/%s",
					tt.line, reports[0].Kind, reports[0].Severity, tt.kind, tt.severity)
			}
			if reports[0].Line != tt.line {
				t.Errorf("report line = %q, want %q", reports[0].Line, tt.line)
			}
		})
	}
}

func TestAmbiguousBaseNameListsCandidates(t *testing.T) {
	var reports []ResolutionReport
	m, domain := newTestMatcher(t, &reports)

	m.Resolve("Pikachu Raichu", domain)
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	want := []string{"pikachu", "raichu"}
	if !reflect.DeepEqual(reports[0].Candidates, want) {
		t.Errorf("Candidates = %v, want %v", reports[0].Candidates, want)
	}
}

func TestResolveNameContainingAnotherName(t *testing.T) {
	var reports []ResolutionReport
	m, _ := newTestMatcher(t, &reports)
	catalog := m.Catalog()

	tests := []struct {
		line   string
		domain models.Domain
		want   string
	}{
		{"Porygon", StandardDomain(catalog), "porygon"},
		{"Porygon-Z", StandardDomain(catalog), "porygon_z"},
		{"Porygon-Z", FullDomain(catalog), "porygon_z"},
		{"Shadow Porygon", ShadowDomain(catalog), "porygon_shadow"},
		{"Shadow Porygon-Z", ShadowDomain(catalog), "porygon_z_shadow"},
		{"Shadow Porygon-Z", StandardDomain(catalog), "porygon_z_shadow"},
		{"Shadow Porygon-Z", FullDomain(catalog), "porygon_z_shadow"},
	}
	for _, tt := range tests {
		reports = nil
		got, ok := m.Resolve(tt.line, tt.domain)
		if !ok || got.ID != tt.want {
			t.Errorf("Resolve(%q) = %q, %v, want %q (reports %+v)", tt.line, got.ID, ok, tt.want, reports)
		}
	}
}

func TestResolveEveryDomainEntryByName(t *testing.T) {
	m, _ := newTestMatcher(t, nil)
	catalog := m.Catalog()

	domains := map[string]models.Domain{
		"standard": StandardDomain(catalog),
		"shadow":   ShadowDomain(catalog),
		"mega":     MegaDomain(catalog),
		"all":      FullDomain(catalog),
	}
	for name, d := range domains {
		t.Run(name, func(t *testing.T) {
			for _, e := range d {
				got, ok := m.Resolve(e.Name, d)
				if !ok || got.ID != e.ID {
					t.Errorf("Resolve(%q) = %q, %v, want %q", e.Name, got.ID, ok, e.ID)
				}
			}
		})
	}
}

func TestMatchAllTierAndDuplicates(t *testing.T) {
	m, domain := newTestMatcher(t, nil)

	lines := []string{
		"Pikachu",
		"5-Star Raids",
		"Giratina (Origin)",
		"Pikachu",
		"Mega Raids",
		"Mega Gengar",
		"Professor Willow",
		"Darmanitan raids",
		"Rotom (Wash)",
	}
	got := m.MatchAll(lines, domain)
	want := []models.SpeciesMatch{
		{SpeciesID: "pikachu", Kind: "5-Star"},
		{SpeciesID: "giratina_origin", Kind: "5-Star"},
		{SpeciesID: "gengar_mega", Kind: "Mega"},
		{SpeciesID: "rotom_wash", Kind: "Darmanitan"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchAll() = %+v, want %+v", got, want)
	}
}

func TestMatchMentionsShiny(t *testing.T) {
	m, domain := newTestMatcher(t, nil)

	got := m.MatchMentions([]Mention{
		{Text: "Pikachu"},
		{Text: "Vulpix", Shiny: true},
		{Text: "Pikachu", Shiny: true},
	}, domain)
	want := []models.SpeciesMatch{
		{SpeciesID: "pikachu", Shiny: true},
		{SpeciesID: "vulpix", Shiny: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchMentions() = %+v, want %+v", got, want)
	}
}

func TestMatchAllIsIdempotent(t *testing.T) {
	m, domain := newTestMatcher(t, nil)

	lines := []string{"Alolan Vulpix", "Shadow Machamp", "Mega Charizard Y", "Flabébé", "Origin"}
	first := m.MatchAll(lines, domain)
	if len(first) != len(lines) {
		t.Fatalf("MatchAll() resolved %d lines, want %d", len(first), len(lines))
	}

	ids := make([]string, len(first))
	for i, match := range first {
		ids[i] = match.SpeciesID
	}
	second := m.MatchAll(ids, domain)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("MatchAll(ids) = %+v, want %+v", second, first)
	}
}

func TestDomainAliasIsReturnedWhenPresent(t *testing.T) {
	catalog := newTestCatalog(t)
	m, err := NewSpeciesMatcher(catalog, MatcherOptions{})
	if err != nil {
		t.Fatal(err)
	}
	domain := DomainWithAliases(catalog, StandardDomain(catalog))

	got, ok := m.Resolve("Pikachu Hat", domain)
	if !ok || got.ID != "pikachu_hat" {
		t.Errorf("Resolve(%q) = %s, %v, want pikachu_hat", "Pikachu Hat", got.ID, ok)
	}
}

func TestNameOverrides(t *testing.T) {
	catalog := newTestCatalog(t)
	m, err := NewSpeciesMatcher(catalog, MatcherOptions{
		NameOverrides: map[string]string{"sparky mouse": "pikachu"},
		Reporter:      func(ResolutionReport) {},
	})
	if err != nil {
		t.Fatal(err)
	}
	domain := StandardDomain(catalog)

	if got, ok := m.Resolve("Sparky Mouse", domain); !ok || got.ID != "pikachu" {
		t.Errorf("Resolve(%q) = %s, %v, want pikachu", "Sparky Mouse", got.ID, ok)
	}

	layered := m.WithOverrides(map[string]string{"Sparky Mouse": "raichu", "fox": "vulpix"})
	if got, ok := layered.Resolve("Sparky Mouse", domain); !ok || got.ID != "raichu" {
		t.Errorf("layered Resolve(%q) = %s, %v, want raichu", "Sparky Mouse", got.ID, ok)
	}
	if got, ok := layered.Resolve("Fox", domain); !ok || got.ID != "vulpix" {
		t.Errorf("layered Resolve(%q) = %s, %v, want vulpix", "Fox", got.ID, ok)
	}
	// the base matcher keeps its own overrides
	if _, ok := m.Resolve("Fox", domain); ok {
		t.Errorf("Resolve(%q) on base matcher matched, want no match", "Fox")
	}
}

func TestContainsWord(t *testing.T) {
	m, _ := newTestMatcher(t, nil)

	tests := []struct {
		text   string
		phrase string
		want   bool
	}{
		{"shadow machamp", "machamp", true},
		{"machamps", "machamp", false},
		{"rotom (wash)", "wash", true},
		{"pikachu*", "pikachu", true},
		{"raichu", "chu", false},
	}
	for _, tt := range tests {
		if got := m.containsWord(tt.text, tt.phrase); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.text, tt.phrase, got, tt.want)
		}
	}
}
