// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import (
	"strings"
	"testing"
)

// ============================================================
// Value Formatting Tests
// ============================================================

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{2496, "2496"},
		{345, "345"},
		{0, "0"},
		{1.3, "1.3"},
		{1024.212, "1024.212"},
		{-4.5, "-4.5"},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.value); got != tt.expected {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.value, got, tt.expected)
		}
	}
}

// ============================================================
// Summary Tests
// ============================================================

func TestSummary_EnvyReading(t *testing.T) {
	msg, err := Decode([]byte(envyReadingFixture))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	expected := "Device: CC128 v0.11\n" +
		"  Sensor: 1 [01234,1]\n" +
		"  Total: 2496 watts\n" +
		"  Phase 1: 345 watts\n" +
		"  Phase 2: 2151 watts\n" +
		"  Phase 3: 0 watts\n"

	if got := msg.Summary(""); got != expected {
		t.Errorf("Summary mismatch:\n got %q\nwant %q", got, expected)
	}
}

func TestSummary_Prefix(t *testing.T) {
	msg, err := Decode([]byte(`<msg><src>CC128-v0.11</src></msg>`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	expected := ">> Device: CC128 v0.11\n"
	if got := msg.Summary(">> "); got != expected {
		t.Errorf("Summary mismatch:\n got %q\nwant %q", got, expected)
	}
}

func TestSummary_SkipsAbsentPhases(t *testing.T) {
	raw := `<msg><src>CC128-v0.11</src><ch1><watts>00300</watts></ch1><ch3><watts>00100</watts></ch3></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	summary := msg.Summary("")
	if strings.Contains(summary, "Phase 2") {
		t.Errorf("Expected absent phase 2 skipped, got:\n%s", summary)
	}
	if !strings.Contains(summary, "Phase 1: 300 watts\n") || !strings.Contains(summary, "Phase 3: 100 watts\n") {
		t.Errorf("Expected phases 1 and 3 reported, got:\n%s", summary)
	}
}

func TestSummary_HistoryOrdering(t *testing.T) {
	// Sensors ascend numerically, spans sort lexicographically, ages ascend
	raw := `<msg><src>CC128-v0.11</src><hist>` +
		`<data><sensor>2</sensor><h004>2.2</h004><h002>1.1</h002></data>` +
		`<data><sensor>0</sensor><d001>3.3</d001><y1>9.9</y1></data>` +
		`</hist></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	expected := "Device: CC128 v0.11\n" +
		"  History\n" +
		"    Sensor 0\n" +
		"      -1 days: 3.3\n" +
		"      -1 years: 9.9\n" +
		"    Sensor 2\n" +
		"      -2 hours: 1.1\n" +
		"      -4 hours: 2.2\n"

	if got := msg.Summary(""); got != expected {
		t.Errorf("Summary mismatch:\n got %q\nwant %q", got, expected)
	}
}

func TestSummary_Deterministic(t *testing.T) {
	raw := []byte(envyHistoryFixture())

	first, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	second, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	a := first.Summary("  ")
	b := second.Summary("  ")
	if a != b {
		t.Error("Expected byte-identical summaries from identical input")
	}
	if a != first.Summary("  ") {
		t.Error("Expected repeated Summary() calls to be identical")
	}
}

func TestFormatMessage_Header(t *testing.T) {
	msg, err := Decode([]byte(envyReadingFixture))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	out := FormatMessage(msg)
	if !strings.Contains(out, "] ENVY\n") {
		t.Errorf("Expected variant header, got:\n%s", out)
	}
	if !strings.Contains(out, "  Device: CC128 v0.11\n") {
		t.Errorf("Expected indented summary, got:\n%s", out)
	}
}
