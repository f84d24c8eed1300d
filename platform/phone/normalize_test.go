package phone

import "testing"

func TestIsMalian(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"+22370123456", true},
		{"+223 70 12 34 56", true},
		{"+223  70  12 34   56", true},
		{" +223 70 12 34 56 ", true},
		{"+22312345", false},
		{"+2237012345", false},
		{"+223701234567", false},
		{"+223 701 23 45 6", false},
		{"22370123456", false},
		{"+33 6 12 34 56 78", false},
		{"+223-70-12-34-56", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsMalian(tc.input); got != tc.want {
			t.Errorf("IsMalian(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeE164StripsGrouping(t *testing.T) {
	for _, input := range []string{"+22370123456", "+223 70 12 34 56", "+223  70 12  34 56"} {
		if got := NormalizeE164(input); got != "+22370123456" {
			t.Errorf("NormalizeE164(%q) = %q, want %q", input, got, "+22370123456")
		}
	}
}

func TestNormalizeE164Empty(t *testing.T) {
	if got := NormalizeE164("   "); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
