package services

import "testing"

func TestDiacriticFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Flabébé", "flabebe"},
		{"Farfetch'd", "farfetchd"},
		{"Farfetch’d", "farfetchd"},
		{"POKÉMON", "pokemon"},
		{"Nidoran♀", "nidoran♀"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DiacriticFold(tt.in); got != tt.want {
			t.Errorf("DiacriticFold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripDecorations(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"*pikachu", "pikachu"},
		{"giratina origin forme", "giratina origin"},
		{"castform (normal)", "castform"},
		{"pikachu  libre", "pikachu libre"},
		{"raichu alola form", "raichu alolan"},
		{"weezing galar form", "weezing galarian"},
		{"mr mime", "mr. mime"},
		{"mr. mime", "mr. mime"},
		{"mime jr", "mime jr."},
		{"nidoran female", "nidoran♀"},
		{"hooh", "ho-oh"},
		{"ho-oh", "ho-oh"},
	}
	for _, tt := range tests {
		if got := StripDecorations(tt.in); got != tt.want {
			t.Errorf("StripDecorations(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIdify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pikachu", "pikachu"},
		{"Mr. Mime", "mr_mime"},
		{"Mime Jr.", "mime_jr"},
		{"Ho-Oh", "ho_oh"},
		{"Farfetch'd", "farfetchd"},
		{"Type: Null", "type_null"},
		{"Nidoran♀", "nidoran_female"},
		{"Nidoran♂", "nidoran_male"},
		{"Tapu Koko", "tapu_koko"},
		{"Mime (Jr)", "mime_jr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Idify(tt.in)
			if got != tt.want {
				t.Errorf("Idify(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Idify(got); again != got {
				t.Errorf("Idify(%q) = %q, not idempotent", got, again)
			}
		})
	}
}

func TestMonthIndex(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"January", 0, true},
		{"june", 5, true},
		{"December,", 11, true},
		{"Sept", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := MonthIndex(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("MonthIndex(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
