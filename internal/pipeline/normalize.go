package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"dpwhparse/internal"
	"dpwhparse/internal/anomaly"
	"dpwhparse/internal/util"
)

// emptyIsValid lists the field roles where a blank value is expected data
// rather than a defect. Accomplishment is blank for work not yet started.
var emptyIsValid = map[internal.FieldRole]bool{
	internal.RoleAccomplishment: true,
}

// NormalizeCost converts a formatted peso amount ("96,479,756.48") to a
// nonnegative decimal. Negative values cannot survive into the dataset and
// are nulled with a warning; values above warnThreshold keep their value
// but are flagged for review.
func NormalizeCost(raw string, warnThreshold float64) (*float64, []anomaly.Note) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, []anomaly.Note{anomaly.N(anomaly.EmptyCost)}
	}

	cleaned := strings.ReplaceAll(raw, ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !isFinite(value) {
		return nil, []anomaly.Note{anomaly.N(anomaly.InvalidCost, raw)}
	}
	if value < 0 {
		return nil, []anomaly.Note{anomaly.N(anomaly.NegativeCost, util.FormatFloat(value))}
	}
	if warnThreshold > 0 && value > warnThreshold {
		return &value, []anomaly.Note{anomaly.N(anomaly.ImplausibleCost, util.FormatFloat(value))}
	}
	return &value, nil
}

// isFinite rejects the NaN/Inf spellings ParseFloat accepts; neither is a
// meaningful peso amount or percentage.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type DateField int

const (
	EffectivityDate DateField = iota
	ExpiryDate
)

// NormalizeDate parses a free-text date ("March 15, 2022") into ISO
// calendar form. The anomaly code depends on which date field the value
// came from.
func NormalizeDate(raw string, field DateField) (*string, []anomaly.Note) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if field == EffectivityDate {
			return nil, []anomaly.Note{anomaly.N(anomaly.EmptyEffectivity)}
		}
		return nil, []anomaly.Note{anomaly.N(anomaly.EmptyExpiry)}
	}

	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		if field == EffectivityDate {
			return nil, []anomaly.Note{anomaly.N(anomaly.InvalidEffectivity, raw)}
		}
		return nil, []anomaly.Note{anomaly.N(anomaly.InvalidExpiry, raw)}
	}
	iso := parsed.Format("2006-01-02")
	return &iso, nil
}

// NormalizePercentage parses an accomplishment percentage. Out-of-range
// values are discarded, not clamped: the source ambiguity is not locally
// resolvable.
func NormalizePercentage(raw string) (*float64, []anomaly.Note) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if emptyIsValid[internal.RoleAccomplishment] {
			return nil, nil
		}
		return nil, []anomaly.Note{anomaly.N(anomaly.EmptyAccomplishment)}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(value) {
		return nil, []anomaly.Note{anomaly.N(anomaly.InvalidPercentage, raw)}
	}
	if value < 0 || value > 100 {
		return nil, []anomaly.Note{anomaly.N(anomaly.PercentageOutOfRange, util.FormatFloat(value))}
	}
	return &value, nil
}

// SplitOffice separates "REGION - OFFICE" on the first " - ". A value
// without the delimiter is a benign format variant: region stays nil and
// the full text becomes the office.
func SplitOffice(raw string) (region *string, office *string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	before, after, found := strings.Cut(raw, " - ")
	if !found {
		return nil, util.StringPtr(raw)
	}
	return util.StringPtr(strings.TrimSpace(before)), util.StringPtr(strings.TrimSpace(after))
}
