package htmlutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Jan Nov&aacute;k | FK Slavoj</title>
<meta name="description" content="Hr&aacute;&#269;sk&yacute; profil">
</head>
<body>
<h1>Jan Nov&aacute;k</h1>
<h2>Sezona <b>2024</b></h2>
<h4>ignored</h4>
<p>St&#345;edn&iacute; z&aacute;lo&#382;n&iacute;k.</p>
<p>  </p>
<p>Druh&yacute; odstavec.</p>
<a href="https://www.instagram.com/jan.novak/">IG</a>
<a href="#top">skip</a>
<a href="javascript:void(0)">skip</a>
<a href="https://www.instagram.com/jan.novak/">dup</a>
<a href="/o-klubu">About</a>
</body>
</html>`

func TestTitle(t *testing.T) {
	if got, want := Title(samplePage), "Jan Novák | FK Slavoj"; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
	og := `<meta property="og:title" content="Fallback">`
	if got, want := Title(og), "Fallback"; got != want {
		t.Errorf("Title og fallback = %q, want %q", got, want)
	}
	if got := Title("<p>no title</p>"); got != "" {
		t.Errorf("Title = %q, want empty", got)
	}
}

func TestDescription(t *testing.T) {
	if got, want := Description(samplePage), "Hráčský profil"; got != want {
		t.Errorf("Description = %q, want %q", got, want)
	}
	reversed := `<meta content="Reversed order" name="description">`
	if got, want := Description(reversed), "Reversed order"; got != want {
		t.Errorf("Description reversed = %q, want %q", got, want)
	}
}

func TestHeadings(t *testing.T) {
	got := Headings(samplePage)
	want := []string{"Jan Novák", "Sezona 2024"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Headings mismatch (-want +got):\n%s", diff)
	}
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs(samplePage)
	want := []string{"Střední záložník.", "Druhý odstavec."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestLinks(t *testing.T) {
	got := Links(samplePage)
	want := []string{"https://www.instagram.com/jan.novak/", "/o-klubu"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Links mismatch (-want +got):\n%s", diff)
	}
}

func TestStripTags(t *testing.T) {
	if got, want := StripTags("<p>a  <b>b</b>\nc</p>"), "a b c"; got != want {
		t.Errorf("StripTags = %q, want %q", got, want)
	}
	if got := StripTags(""); got != "" {
		t.Errorf("StripTags(empty) = %q", got)
	}
}
