// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import "fmt"

// AnomalyType represents different kinds of implausible message values
type AnomalyType int

const (
	AnomalyHighPower AnomalyType = iota
	AnomalyInvalidTemp
	AnomalyInvalidClock
)

// ValidationError represents a single anomaly found in a decoded message
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateMessage checks a decoded message for implausible values. The
// checks are advisory: a flagged message is still a valid decode, the data
// quality concern belongs to the caller. Returns an empty slice for a clean
// message.
func ValidateMessage(m *Message) []ValidationError {
	errors := []ValidationError{}

	for ch := 1; ch <= MaxChannels; ch++ {
		v, ok := m.ChannelValue(ch)
		if ok && v > MaxPlausibleWatts {
			errors = append(errors, ValidationError{
				Type:    AnomalyHighPower,
				Message: fmt.Sprintf("channel %d reading %s exceeds %g", ch, FormatValue(v), MaxPlausibleWatts),
				Details: map[string]interface{}{"channel": ch, "value": v},
			})
		}
	}

	if t, ok := m.Temperature(); ok {
		if t < MinPlausibleTempC || t > MaxPlausibleTempC {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidTemp,
				Message: fmt.Sprintf("temperature %s outside %g..%g", FormatValue(t), MinPlausibleTempC, MaxPlausibleTempC),
				Details: map[string]interface{}{"temperature": t},
			})
		}
	}

	clock := m.TimeOfDay()
	if clock.Hour > 23 || clock.Minute > 59 || clock.Second > 59 ||
		clock.Hour < 0 || clock.Minute < 0 || clock.Second < 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidClock,
			Message: fmt.Sprintf("clock %02d:%02d:%02d out of range", clock.Hour, clock.Minute, clock.Second),
			Details: map[string]interface{}{"hour": clock.Hour, "minute": clock.Minute, "second": clock.Second},
		})
	}

	return errors
}
