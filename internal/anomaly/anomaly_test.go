package anomaly

import (
	"strings"
	"testing"
)

func TestRegistryValid(t *testing.T) {
	if err := validateRegistry(); err != nil {
		t.Fatal(err)
	}
}

func TestRegistryRejectsPrefixMismatch(t *testing.T) {
	saved := registry
	defer func() { registry = saved }()

	registry = []Code{{"ERR-099", SeverityWarning, "mismatched"}}
	if err := validateRegistry(); err == nil {
		t.Fatal("expected prefix/severity mismatch error")
	}

	registry = []Code{{"WARN-001", SeverityWarning, "a"}, {"WARN-001", SeverityWarning, "b"}}
	if err := validateRegistry(); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestMessage(t *testing.T) {
	got := Message(JointVenture, 3)
	if got != "INFO-045: Joint venture with 3 contractors" {
		t.Fatalf("got %q", got)
	}
	if Message(MissingContractID) != "ERR-001: Missing contract ID" {
		t.Fatalf("got %q", Message(MissingContractID))
	}
}

func TestLedgerFinalize(t *testing.T) {
	led := NewLedger(0)
	led.Add(EmptyCost)
	led.Add(EmptyExpiry)
	led.Add(MissingContractID)

	cols := led.Finalize()
	if cols.Critical != nil || cols.Info != nil {
		t.Fatalf("unexpected non-nil columns: %+v", cols)
	}
	if cols.Errors == nil || *cols.Errors != "ERR-001: Missing contract ID" {
		t.Fatalf("errors column: %v", cols.Errors)
	}
	want := "WARN-011: Empty cost field | WARN-013: Empty expiry date"
	if cols.Warnings == nil || *cols.Warnings != want {
		t.Fatalf("warnings column: %v", cols.Warnings)
	}
}

func TestLedgerTruncation(t *testing.T) {
	led := NewLedger(40)
	led.Add(InvalidCost, strings.Repeat("x", 100))

	cols := led.Finalize()
	if cols.Errors == nil {
		t.Fatal("errors column is nil")
	}
	if got := len([]rune(*cols.Errors)); got != 40 {
		t.Fatalf("len=%d want 40", got)
	}
	if !strings.HasSuffix(*cols.Errors, "...") {
		t.Fatalf("missing ellipsis: %q", *cols.Errors)
	}
}

func TestLedgerTinyMaxLenFallsBack(t *testing.T) {
	// A limit with no room for content plus the ellipsis must not slice
	// out of range; it falls back to the default.
	led := NewLedger(2)
	led.Add(MissingContractID)

	cols := led.Finalize()
	if cols.Errors == nil || *cols.Errors != "ERR-001: Missing contract ID" {
		t.Fatalf("errors column: %v", cols.Errors)
	}
}

func TestLedgerHasCritical(t *testing.T) {
	led := NewLedger(0)
	if led.HasCritical() {
		t.Fatal("fresh ledger reports critical")
	}
	led.Add(NoContractRows)
	if !led.HasCritical() {
		t.Fatal("critical note not reported")
	}
}
