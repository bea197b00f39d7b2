package verify

import "testing"

func TestContainsName(t *testing.T) {
	tests := []struct {
		name string
		text string
		who  string
		want bool
	}{
		{
			name: "exact match",
			text: "Jan Novák je záložník FK Slavoj.",
			who:  "Jan Novák",
			want: true,
		},
		{
			name: "diacritics and case folded",
			text: "NOVAK was seen at the tournament",
			who:  "Novák",
			want: true,
		},
		{
			name: "accented text plain name",
			text: "Rozhovor s Janem Novákem vedl Petr Svoboda.",
			who:  "svoboda",
			want: true,
		},
		{
			name: "absent",
			text: "Stránka o historii klubu.",
			who:  "Jan Novák",
			want: false,
		},
		{
			name: "empty name never matches",
			text: "anything",
			who:  "",
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContainsName(tc.text, tc.who); got != tc.want {
				t.Errorf("ContainsName(%q, %q) = %v, want %v", tc.text, tc.who, got, tc.want)
			}
		})
	}
}
