// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import (
	"fmt"
	"time"
)

// Statistics tracks decode outcomes and message rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalMessages     uint64
	ClassicMessages   uint64
	EnvyMessages      uint64
	ReadingMessages   uint64
	HistoryMessages   uint64
	MalformedMessages uint64
	AnomalousValues   uint64
	HighPower         uint64
	InvalidTemp       uint64
	InvalidClock      uint64

	// Rates (calculated)
	MessageRate float64 // messages/sec
	ErrorRate   float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics for one decode attempt
func (s *Statistics) Update(msg *Message, decodeErr error, anomalies []ValidationError) {
	s.TotalMessages++

	if decodeErr != nil {
		s.MalformedMessages++
		s.LastUpdateTime = time.Now()
		return
	}

	switch msg.Variant() {
	case VariantClassic:
		s.ClassicMessages++
	case VariantEnvy:
		s.EnvyMessages++
	}
	if msg.HasReadings() {
		s.ReadingMessages++
	}
	if msg.HasHistory() {
		s.HistoryMessages++
	}

	for _, anomaly := range anomalies {
		s.AnomalousValues++
		switch anomaly.Type {
		case AnomalyHighPower:
			s.HighPower++
		case AnomalyInvalidTemp:
			s.InvalidTemp++
		case AnomalyInvalidClock:
			s.InvalidClock++
		}
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates message and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.MessageRate = float64(s.TotalMessages) / elapsed
		s.ErrorRate = float64(s.MalformedMessages+s.AnomalousValues) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var malformedPercent, anomalousPercent float64
	if s.TotalMessages > 0 {
		malformedPercent = float64(s.MalformedMessages) * 100.0 / float64(s.TotalMessages)
		anomalousPercent = float64(s.AnomalousValues) * 100.0 / float64(s.TotalMessages)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Messages:  %8d\n", s.TotalMessages)
	result += fmt.Sprintf("Classic:         %8d\n", s.ClassicMessages)
	result += fmt.Sprintf("Envy:            %8d\n", s.EnvyMessages)
	result += fmt.Sprintf("With Readings:   %8d\n", s.ReadingMessages)
	result += fmt.Sprintf("With History:    %8d\n", s.HistoryMessages)

	if s.MalformedMessages > 0 {
		result += fmt.Sprintf("Malformed:       %8d (%.1f%%)\n", s.MalformedMessages, malformedPercent)
	}
	if s.AnomalousValues > 0 {
		result += fmt.Sprintf("Anomalous Values:%8d (%.1f%%)\n", s.AnomalousValues, anomalousPercent)
		if s.HighPower > 0 {
			result += fmt.Sprintf("  High Power:       %5d\n", s.HighPower)
		}
		if s.InvalidTemp > 0 {
			result += fmt.Sprintf("  Invalid Temp:     %5d\n", s.InvalidTemp)
		}
		if s.InvalidClock > 0 {
			result += fmt.Sprintf("  Invalid Clock:    %5d\n", s.InvalidClock)
		}
	}

	result += fmt.Sprintf("Message Rate:    %8.1f msgs/sec\n", s.MessageRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
