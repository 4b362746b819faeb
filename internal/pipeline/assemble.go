package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"dpwhparse/internal"
	"dpwhparse/internal/anomaly"
	"dpwhparse/internal/config"
	"dpwhparse/internal/util"
)

// rawFields holds every field of a fragment before any interpretation.
// Extraction completes before normalization starts, so the normalizers can
// be tested against plain strings.
type rawFields struct {
	rowNumber   *string
	contractID  *string
	description *string
	contractors *string
	office      *string
	funds       *string
	cost        *string
	effectivity *string
	expiry      *string
	status      *string
	pct         *string
}

func extractFields(frag Fragment) rawFields {
	return rawFields{
		rowNumber:   frag.RowNumber(),
		contractID:  frag.Field(internal.RoleContractID),
		description: frag.Field(internal.RoleDescription),
		contractors: frag.Field(internal.RoleContractors),
		office:      frag.Field(internal.RoleOffice),
		funds:       frag.Field(internal.RoleFunds),
		cost:        frag.Field(internal.RoleCost),
		effectivity: frag.Field(internal.RoleEffectivity),
		expiry:      frag.Field(internal.RoleExpiry),
		status:      frag.Field(internal.RoleStatus),
		pct:         frag.Field(internal.RoleAccomplishment),
	}
}

// AssembleRecord builds one output record from a fragment. Records are
// always emitted, whatever is missing; downstream consumers filter on the
// note columns.
func AssembleRecord(frag Fragment, doc internal.DocumentInfo, cfg config.Config) internal.ContractRecord {
	led := anomaly.NewLedger(cfg.NoteMaxLen)
	raw := extractFields(frag)

	rec := internal.ContractRecord{
		RowNumber:    raw.rowNumber,
		Year:         doc.Year,
		SourceOffice: doc.Office,
		FileSource:   filepath.Base(doc.Path),
	}

	if present(raw.contractID) {
		rec.ContractID = raw.contractID
	} else {
		led.Add(anomaly.MissingContractID)
	}
	if present(raw.description) {
		rec.Description = raw.description
	} else {
		led.Add(anomaly.MissingDescription)
	}

	applyContractors(&rec, raw.contractors, led, cfg)

	if present(raw.office) {
		rec.Region, rec.ImplementingOffice = SplitOffice(*raw.office)
	} else {
		led.Add(anomaly.MissingOffice)
	}
	if present(raw.funds) {
		rec.SourceOfFunds = raw.funds
	} else {
		led.Add(anomaly.MissingFunds)
	}

	cost, notes := NormalizeCost(util.DerefString(raw.cost), cfg.CostWarnThreshold)
	rec.CostPHP = cost
	led.AddAll(notes)

	eff, notes := NormalizeDate(util.DerefString(raw.effectivity), EffectivityDate)
	rec.EffectivityDate = eff
	led.AddAll(notes)

	exp, notes := NormalizeDate(util.DerefString(raw.expiry), ExpiryDate)
	rec.ExpiryDate = exp
	led.AddAll(notes)

	checkDates(rec.EffectivityDate, rec.ExpiryDate, led)

	if present(raw.status) {
		rec.Status = raw.status
	} else {
		led.Add(anomaly.EmptyStatus)
	}

	pct, notes := NormalizePercentage(util.DerefString(raw.pct))
	rec.AccomplishmentPct = pct
	if cfg.PctSuppressNotStarted && statusNotStarted(rec.Status) {
		notes = nil
	}
	led.AddAll(notes)

	cols := led.Finalize()
	rec.CriticalErrors = cols.Critical
	rec.Errors = cols.Errors
	rec.Warnings = cols.Warnings
	rec.InfoNotes = cols.Info
	return rec
}

// maxContractorCols is the number of contractor column pairs in the record
// shape. Deliberately not configurable: the output header is frozen, so a
// larger budget would have nowhere to put the extra columns.
const maxContractorCols = 4

func applyContractors(rec *internal.ContractRecord, raw *string, led *anomaly.Ledger, cfg config.Config) {
	if !present(raw) {
		led.Add(anomaly.MissingContractor)
		return
	}
	entries := SplitContractors(*raw)
	if len(entries) == 0 {
		led.Add(anomaly.MissingContractor)
		return
	}

	for _, e := range entries {
		if e.ID == nil {
			led.Add(anomaly.ContractorMissingID, util.Truncate(e.Name, 30))
		}
		if e.HasSlash {
			led.Add(anomaly.ContractorNameSlash, util.Truncate(e.Name, 50))
		}
		if len([]rune(e.Name)) < 3 {
			led.Add(anomaly.ShortContractorName, e.Name)
		}
	}

	names := make([]*string, maxContractorCols)
	ids := make([]*string, maxContractorCols)
	for i := 0; i < maxContractorCols-1 && i < len(entries); i++ {
		names[i] = util.StringPtr(entries[i].Name)
		ids[i] = entries[i].ID
	}
	if len(entries) >= maxContractorCols {
		// Entry four and beyond collapse into the last column pair.
		overflowNames := make([]string, 0, len(entries)-maxContractorCols+1)
		overflowIDs := make([]string, 0, len(entries)-maxContractorCols+1)
		for _, e := range entries[maxContractorCols-1:] {
			overflowNames = append(overflowNames, e.Name)
			overflowIDs = append(overflowIDs, util.DerefString(e.ID))
		}
		names[maxContractorCols-1] = util.StringPtr(strings.Join(overflowNames, "; "))
		ids[maxContractorCols-1] = util.StringPtr(strings.Join(overflowIDs, "; "))
	}

	rec.ContractorName1, rec.ContractorID1 = names[0], ids[0]
	rec.ContractorName2, rec.ContractorID2 = names[1], ids[1]
	rec.ContractorName3, rec.ContractorID3 = names[2], ids[2]
	rec.ContractorName4, rec.ContractorID4 = names[3], ids[3]

	threshold := cfg.OverflowWarnThreshold
	if threshold <= 0 {
		threshold = maxContractorCols
	}
	if len(entries) > threshold {
		led.Add(anomaly.ExtraContractors, len(entries))
	}
	if len(entries) > 1 {
		led.Add(anomaly.JointVenture, len(entries))
	}
}

func checkDates(eff, exp *string, led *anomaly.Ledger) {
	var effT, expT time.Time
	var haveEff, haveExp bool
	if eff != nil {
		if t, err := time.Parse("2006-01-02", *eff); err == nil {
			effT, haveEff = t, true
		}
	}
	if exp != nil {
		if t, err := time.Parse("2006-01-02", *exp); err == nil {
			expT, haveExp = t, true
		}
	}

	if haveEff && haveExp {
		if expT.Before(effT) {
			led.Add(anomaly.ExpiryBeforeEffectivity, *exp, *eff)
		} else if expT.After(effT.AddDate(10, 0, 0)) {
			led.Add(anomaly.LongDuration)
		}
	}
	if haveEff && effT.After(time.Now()) {
		led.Add(anomaly.FutureEffectivity, *eff)
	}
}

func statusNotStarted(status *string) bool {
	if status == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*status), "not yet started")
}

func present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}
