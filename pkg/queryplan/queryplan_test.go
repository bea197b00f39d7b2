package queryplan

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/osintlab/mailtrace/pkg/resolver"
)

func TestVariants(t *testing.T) {
	got := Variants("Jan Novák")
	want := []string{
		`"Jan Novák"`,
		"jannovak",
		"jan.novak",
		"jan_novak",
		"novakjan",
		"novak.jan",
		"novak_jan",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Variants mismatch (-want +got):\n%s", diff)
	}
}

func TestVariantsRequireTwoWords(t *testing.T) {
	for _, name := range []string{"", "Marie", "Jan Novák Starší"} {
		if got := Variants(name); got != nil {
			t.Errorf("Variants(%q) = %v, want nil", name, got)
		}
	}
}

func TestIsFreeProvider(t *testing.T) {
	p := New()

	tests := []struct {
		domain string
		want   bool
	}{
		{"gmail.com", true},
		{"GMAIL.COM", true},
		{"seznam.cz", true},
		{"firma.cz", false},
		{"vutbr.cz", false},
	}
	for _, tc := range tests {
		if got := p.IsFreeProvider(tc.domain); got != tc.want {
			t.Errorf("IsFreeProvider(%q) = %v, want %v", tc.domain, got, tc.want)
		}
	}
}

func TestBuildOrganizationalDomain(t *testing.T) {
	p := New()
	name := resolver.Name{Display: "Jan Novák", Resolved: true}

	got := p.Build("jan.novak@firma.cz", "firma.cz", name)

	want := []Query{
		{Text: `"Jan Novák" firma.cz`, RequiresNameCheck: true},
		{Text: `"Jan Novák"`, RequiresNameCheck: true},
		{Text: "jannovak", RequiresNameCheck: true},
		{Text: "jan.novak", RequiresNameCheck: true},
		{Text: "jan_novak", RequiresNameCheck: true},
		{Text: "novakjan", RequiresNameCheck: true},
		{Text: "novak.jan", RequiresNameCheck: true},
		{Text: "novak_jan", RequiresNameCheck: true},
		{Text: "jannovak firma.cz", RequiresNameCheck: true},
		{Text: "jan.novak firma.cz", RequiresNameCheck: true},
		{Text: "jan_novak firma.cz", RequiresNameCheck: true},
		{Text: "novakjan firma.cz", RequiresNameCheck: true},
		{Text: "novak.jan firma.cz", RequiresNameCheck: true},
		{Text: "novak_jan firma.cz", RequiresNameCheck: true},
		{Text: "firma.cz", RequiresNameCheck: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFreeProvider(t *testing.T) {
	p := New()
	name := resolver.Name{Display: "Jan Novák", Resolved: true}

	got := p.Build("jan.novak@gmail.com", "gmail.com", name)

	// No domain-joined queries and no bare-domain query for free providers.
	want := []Query{
		{Text: `"Jan Novák"`, RequiresNameCheck: true},
		{Text: "jannovak", RequiresNameCheck: true},
		{Text: "jan.novak", RequiresNameCheck: true},
		{Text: "jan_novak", RequiresNameCheck: true},
		{Text: "novakjan", RequiresNameCheck: true},
		{Text: "novak.jan", RequiresNameCheck: true},
		{Text: "novak_jan", RequiresNameCheck: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUnresolvedName(t *testing.T) {
	p := New()
	name := resolver.Name{Display: "Qwrtz", Resolved: false}

	got := p.Build("qwrtz@firma.cz", "firma.cz", name)

	// Raw email and bare domain, both unchecked; the organizational domain
	// query collapses into the existing one.
	want := []Query{
		{Text: "qwrtz@firma.cz", RequiresNameCheck: false},
		{Text: "firma.cz", RequiresNameCheck: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestResultSetANDMerge(t *testing.T) {
	rs := ResultSet{}

	rs.Add("https://example.com/a", true)
	rs.Add("https://example.com/a", false)
	rs.Add("https://example.com/a", true)

	if rs["https://example.com/a"] {
		t.Error("one unchecked occurrence must downgrade the URL to unchecked")
	}

	rs.Add("https://example.com/b", true)
	if !rs["https://example.com/b"] {
		t.Error("checked-only URL must stay checked")
	}
}
