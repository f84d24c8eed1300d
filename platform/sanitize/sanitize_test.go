package sanitize

import "testing"

func TestLine(t *testing.T) {
	got := Line("  Rue  <b>312</b>\t Porte 12 ")
	if got != "Rue 312 Porte 12" {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestTextKeepsLineBreaks(t *testing.T) {
	got := Text("Fuite sous l'évier   \r\n&lt;script&gt;alert(1)&lt;/script&gt;depuis hier")
	want := "Fuite sous l'évier\nalert(1)depuis hier"
	if got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}
