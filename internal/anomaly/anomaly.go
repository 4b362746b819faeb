package anomaly

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityCritical Severity = iota
	SeverityError
	SeverityWarning
	SeverityInfo

	severityCount = 4
)

func (s Severity) Prefix() string {
	switch s {
	case SeverityCritical:
		return "CRIT"
	case SeverityError:
		return "ERR"
	case SeverityWarning:
		return "WARN"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// Code is a registered anomaly. The ID prefix must agree with Severity;
// the registry is checked once at startup so call sites never derive
// severity from the code string.
type Code struct {
	ID       string
	Severity Severity
	Template string
}

var (
	MissingContractID  = Code{"ERR-001", SeverityError, "Missing contract ID"}
	MissingDescription = Code{"ERR-002", SeverityError, "Missing contract description"}
	MissingContractor  = Code{"ERR-003", SeverityError, "Missing contractor information"}
	MissingOffice      = Code{"ERR-004", SeverityError, "Missing implementing office"}
	MissingFunds       = Code{"ERR-005", SeverityError, "Missing source of funds"}

	EmptyCost           = Code{"WARN-011", SeverityWarning, "Empty cost field"}
	EmptyEffectivity    = Code{"WARN-012", SeverityWarning, "Empty effectivity date"}
	EmptyExpiry         = Code{"WARN-013", SeverityWarning, "Empty expiry date"}
	EmptyStatus         = Code{"WARN-014", SeverityWarning, "Empty status field"}
	EmptyAccomplishment = Code{"WARN-015", SeverityWarning, "Empty accomplishment field"}

	InvalidCost     = Code{"ERR-021", SeverityError, "Invalid cost format: '%s'"}
	NegativeCost    = Code{"WARN-022", SeverityWarning, "Negative cost value: %v"}
	ImplausibleCost = Code{"WARN-023", SeverityWarning, "Implausibly large cost value: %v"}

	InvalidPercentage    = Code{"ERR-023", SeverityError, "Invalid percentage format: '%s'"}
	PercentageOutOfRange = Code{"ERR-024", SeverityError, "Percentage out of range: %v"}

	InvalidEffectivity      = Code{"ERR-031", SeverityError, "Invalid effectivity date format: '%s'"}
	InvalidExpiry           = Code{"ERR-032", SeverityError, "Invalid expiry date format: '%s'"}
	ExpiryBeforeEffectivity = Code{"ERR-033", SeverityError, "Expiry date %s before effectivity date %s"}
	FutureEffectivity       = Code{"WARN-034", SeverityWarning, "Future effectivity date: %s"}
	LongDuration            = Code{"WARN-035", SeverityWarning, "Contract duration exceeds 10 years"}

	ExtraContractors    = Code{"WARN-041", SeverityWarning, "%d contractors found, stored in 4 columns (excess combined in column 4)"}
	ContractorMissingID = Code{"ERR-042", SeverityError, "Contractor missing ID code: '%s'"}
	ContractorNameSlash = Code{"WARN-043", SeverityWarning, "Contractor name contains slash (/) - may need manual review: '%s'"}
	ShortContractorName = Code{"WARN-044", SeverityWarning, "Contractor name suspiciously short: '%s'"}
	JointVenture        = Code{"INFO-045", SeverityInfo, "Joint venture with %d contractors"}

	NoContractRows    = Code{"CRIT-051", SeverityCritical, "No contract tbody found"}
	UnparseableMarkup = Code{"CRIT-052", SeverityCritical, "Unparseable document markup: %s"}
)

var registry = []Code{
	MissingContractID, MissingDescription, MissingContractor, MissingOffice, MissingFunds,
	EmptyCost, EmptyEffectivity, EmptyExpiry, EmptyStatus, EmptyAccomplishment,
	InvalidCost, NegativeCost, ImplausibleCost,
	InvalidPercentage, PercentageOutOfRange,
	InvalidEffectivity, InvalidExpiry, ExpiryBeforeEffectivity, FutureEffectivity, LongDuration,
	ExtraContractors, ContractorMissingID, ContractorNameSlash, ShortContractorName, JointVenture,
	NoContractRows, UnparseableMarkup,
}

func init() {
	if err := validateRegistry(); err != nil {
		panic(err)
	}
}

func validateRegistry() error {
	seen := map[string]bool{}
	for _, c := range registry {
		prefix, _, ok := strings.Cut(c.ID, "-")
		if !ok || len(c.ID) != len(prefix)+4 {
			return fmt.Errorf("anomaly: malformed code id %q", c.ID)
		}
		if prefix != c.Severity.Prefix() {
			return fmt.Errorf("anomaly: code %q declared with severity %s", c.ID, c.Severity.Prefix())
		}
		if seen[c.ID] {
			return fmt.Errorf("anomaly: duplicate code id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// Message renders a code into its wire form without a ledger. Used for
// document-level notes that have no record to attach to.
func Message(c Code, args ...any) string {
	msg := c.Template
	if len(args) > 0 {
		msg = fmt.Sprintf(c.Template, args...)
	}
	return c.ID + ": " + msg
}

// Note is a pending ledger entry. Normalizers return notes instead of
// writing to a ledger so they stay pure.
type Note struct {
	Code Code
	Args []any
}

func N(c Code, args ...any) Note {
	return Note{Code: c, Args: args}
}

const DefaultNoteMaxLen = 500

// Ledger accumulates severity-tagged notes for exactly one record under
// construction. Create a fresh one per record; never reuse.
type Ledger struct {
	maxLen int
	notes  [severityCount][]string
}

func NewLedger(maxLen int) *Ledger {
	// Below 4 there is no room for even one character plus the ellipsis,
	// so nonsense limits fall back to the default.
	if maxLen < 4 {
		maxLen = DefaultNoteMaxLen
	}
	return &Ledger{maxLen: maxLen}
}

func (l *Ledger) Add(c Code, args ...any) {
	l.notes[c.Severity] = append(l.notes[c.Severity], Message(c, args...))
}

func (l *Ledger) AddAll(notes []Note) {
	for _, n := range notes {
		l.Add(n.Code, n.Args...)
	}
}

func (l *Ledger) HasCritical() bool {
	return len(l.notes[SeverityCritical]) > 0
}

// Columns holds the four per-severity note strings of a finalized record.
// A severity with no notes is nil, not empty.
type Columns struct {
	Critical *string
	Errors   *string
	Warnings *string
	Info     *string
}

func (l *Ledger) Finalize() Columns {
	return Columns{
		Critical: l.format(SeverityCritical),
		Errors:   l.format(SeverityError),
		Warnings: l.format(SeverityWarning),
		Info:     l.format(SeverityInfo),
	}
}

func (l *Ledger) format(s Severity) *string {
	if len(l.notes[s]) == 0 {
		return nil
	}
	joined := strings.Join(l.notes[s], " | ")
	if runes := []rune(joined); len(runes) > l.maxLen {
		joined = string(runes[:l.maxLen-3]) + "..."
	}
	return &joined
}
