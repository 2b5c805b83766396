// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

// Package ccmsg decodes telemetry messages emitted by the CurrentCost family
// of home energy monitors over their serial link.
//
// Two incompatible device generations exist: the older "Classic" meters and
// the newer "Envy" (CC128/EnviR) meters. Each message is one small markup
// fragment carrying a live power reading, a historical-usage dump, or both.
// The package classifies which generation produced a fragment, decodes it
// into a uniform Message model, and reconstructs the nested historical-usage
// table.
package ccmsg

// Variant identifies which device generation produced a message
type Variant int

const (
	VariantClassic Variant = iota
	VariantEnvy
)

// String returns the variant name
func (v Variant) String() string {
	switch v {
	case VariantClassic:
		return "CLASSIC"
	case VariantEnvy:
		return "ENVY"
	default:
		return "UNKNOWN"
	}
}

// Span names used as HistoryRecord keys
const (
	SpanHours  = "hours"
	SpanDays   = "days"
	SpanMonths = "months"
	SpanYears  = "years"
)

// MaxChannels is the number of simultaneous reading channels a meter reports
const MaxChannels = 3

// Boot time derivation
const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// spanPrefixes maps a one-letter history tag prefix to its span name
var spanPrefixes = map[string]string{
	"h": SpanHours,
	"d": SpanDays,
	"m": SpanMonths,
	"y": SpanYears,
}

// classicSpanGroups are the fixed child objects of a Classic hist block
var classicSpanGroups = []string{"hrs", "days", "mths", "yrs"}

// Anomaly thresholds (advisory checks, never decode failures)
const (
	MaxPlausibleWatts = 30000.0
	MinPlausibleTempC = -40.0
	MaxPlausibleTempC = 85.0
)
