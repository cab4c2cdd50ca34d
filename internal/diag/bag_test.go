package diag

import "testing"

func TestBagCap(t *testing.T) {
	b := NewBag(2)
	if !b.Add(Diagnostic{Severity: SevWarning, Code: AnaShapeMismatch, Message: "one"}) {
		t.Fatalf("first Add dropped")
	}
	if !b.Add(Diagnostic{Severity: SevWarning, Code: AnaShapeMismatch, Message: "two"}) {
		t.Fatalf("second Add dropped")
	}
	if b.Add(Diagnostic{Severity: SevError, Code: AnaMissingAxis, Message: "three"}) {
		t.Fatalf("Add past the cap must report the drop")
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
}

func TestBagSeverityQueries(t *testing.T) {
	b := NewBag(8)
	if b.HasWarnings() || b.HasErrors() {
		t.Fatalf("empty bag must report no findings")
	}
	b.Add(Diagnostic{Severity: SevInfo, Code: AnaShapeMismatch, Message: "i"})
	if b.HasWarnings() {
		t.Fatalf("info-only bag must not count as warnings")
	}
	b.Add(Diagnostic{Severity: SevWarning, Code: AnaEncodingMismatch, Message: "w"})
	if !b.HasWarnings() || b.HasErrors() {
		t.Fatalf("warning must not count as error")
	}
	b.Add(Diagnostic{Severity: SevError, Code: AnaMissingAxis, Message: "e"})
	if !b.HasErrors() {
		t.Fatalf("error not detected")
	}
}

func TestBagSortOrdersBySeverityThenCode(t *testing.T) {
	b := NewBag(8)
	b.Add(Diagnostic{Severity: SevWarning, Code: AnaScratchOverBudget, Message: "b"})
	b.Add(Diagnostic{Severity: SevError, Code: AnaMissingAxis, Message: "a"})
	b.Add(Diagnostic{Severity: SevWarning, Code: AnaUnsupportedLayout, Message: "c"})
	b.Add(Diagnostic{Severity: SevWarning, Code: AnaUnsupportedLayout, Message: "a"})
	b.Sort()

	items := b.Items()
	if items[0].Severity != SevError {
		t.Fatalf("errors must sort first, got %+v", items[0])
	}
	if items[1].Code != AnaUnsupportedLayout || items[1].Message != "a" {
		t.Fatalf("ties break by code then message, got %+v", items[1])
	}
	if items[2].Code != AnaUnsupportedLayout || items[2].Message != "c" {
		t.Fatalf("ties break by message, got %+v", items[2])
	}
	if items[3].Code != AnaScratchOverBudget {
		t.Fatalf("highest code sorts last within a severity, got %+v", items[3])
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(Diagnostic{Severity: SevWarning, Code: AnaShapeMismatch, Message: "a"})
	b := NewBag(1)
	b.Add(Diagnostic{Severity: SevWarning, Code: AnaShapeMismatch, Message: "b"})

	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("merged Len = %d, want 2", a.Len())
	}
	if a.Cap() != 2 {
		t.Fatalf("merged Cap = %d, want 2", a.Cap())
	}
}
