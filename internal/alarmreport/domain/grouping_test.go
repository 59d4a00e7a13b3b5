package report

import "testing"

func TestExtractKey(t *testing.T) {
	extractor, err := NewKeyExtractor(DefaultGroupDelimiter)
	if err != nil {
		t.Fatalf("new key extractor: %v", err)
	}
	cases := []struct {
		label string
		want  string
	}{
		{"TR-001 - Tracker position", "TR-001"},
		{"TR-001 - Tracker position - east wing", "TR-001"},
		{"NCU-03 - No communication", "NCU-03"},
		{"Standalone label", "Standalone label"},
		{"  TR-002  - Motor fault", "TR-002"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := extractor.ExtractKey(tc.label); got != tc.want {
			t.Fatalf("ExtractKey(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestExtractKeyStable(t *testing.T) {
	extractor, err := NewKeyExtractor(DefaultGroupDelimiter)
	if err != nil {
		t.Fatalf("new key extractor: %v", err)
	}
	labelA := "TR-011 - Tracker position"
	labelB := "TR-011 - Motor overcurrent"
	if extractor.ExtractKey(labelA) != extractor.ExtractKey(labelB) {
		t.Fatalf("labels of the same device must map to the same key")
	}
	if extractor.ExtractKey(labelA) != extractor.ExtractKey(labelA) {
		t.Fatalf("extraction must be deterministic")
	}
}

func TestNewKeyExtractorEmptyDelimiter(t *testing.T) {
	if _, err := NewKeyExtractor(""); err == nil {
		t.Fatalf("expected error for empty delimiter")
	}
}
