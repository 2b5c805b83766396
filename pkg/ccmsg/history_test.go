// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import (
	"reflect"
	"testing"
)

// ============================================================
// Classic History Tests
// ============================================================

func TestClassicHistory_SingleImplicitSensor(t *testing.T) {
	msg, err := Decode([]byte(classicHistoryFixture))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if !msg.HasHistory() {
		t.Fatal("Expected history present")
	}
	history := msg.History()
	if len(history) != 1 {
		t.Fatalf("Expected one sensor, got %d", len(history))
	}

	record, ok := history[0]
	if !ok {
		t.Fatal("Expected implicit sensor index 0")
	}

	expected := HistoryRecord{
		SpanHours:  {2: 1.3, 4: 2.2},
		SpanDays:   {1: 7.2, 2: 6.1},
		SpanMonths: {1: 112.1},
		SpanYears:  {1: 1024.212},
	}
	if !reflect.DeepEqual(record, expected) {
		t.Errorf("Record mismatch:\n got %v\nwant %v", record, expected)
	}
}

func TestClassicHistory_MissingSpanGroupAbsent(t *testing.T) {
	raw := `<msg><src><name>CC02</name><sver>1.06</sver></src><hist><hrs><h02>1.3</h02></hrs></hist></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	record := msg.History()[0]
	if len(record) != 1 {
		t.Fatalf("Expected only the hours span, got %v", record)
	}
	if _, ok := record[SpanDays]; ok {
		t.Error("Expected days span absent, not an empty map")
	}
}

func TestSplitSpanKey(t *testing.T) {
	tests := []struct {
		key  string
		span string
		age  int
		ok   bool
	}{
		{"h02", SpanHours, 2, true},
		{"d01", SpanDays, 1, true},
		{"m12", SpanMonths, 12, true},
		{"y1", SpanYears, 1, true},
		{"h", "", 0, false},
		{"x02", "", 0, false},
		{"hxx", "", 0, false},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		span, age, ok := splitSpanKey(tt.key)
		if span != tt.span || age != tt.age || ok != tt.ok {
			t.Errorf("splitSpanKey(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.key, span, age, ok, tt.span, tt.age, tt.ok)
		}
	}
}

// ============================================================
// Envy History Tests (raw-text reconstruction)
// ============================================================

func TestEnvyHistory_TenSensors(t *testing.T) {
	msg, err := Decode([]byte(envyHistoryFixture()))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if !msg.HasHistory() {
		t.Fatal("Expected history present")
	}
	history := msg.History()
	if len(history) != 10 {
		t.Fatalf("Expected ten sensors despite sibling collapse, got %d", len(history))
	}

	for sensor := 0; sensor < 10; sensor++ {
		record, ok := history[sensor]
		if !ok {
			t.Errorf("Missing sensor %d", sensor)
			continue
		}
		hours := record[SpanHours]
		if len(hours) != 4 {
			t.Errorf("Sensor %d: expected exactly 4 hourly ages, got %v", sensor, hours)
		}
	}
}

func TestEnvyHistory_Sensor5ExactAges(t *testing.T) {
	msg, err := Decode([]byte(envyHistoryFixture()))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	hours := msg.History()[5][SpanHours]
	expected := map[int]float64{24: 5.1, 22: 5.2, 20: 5.3, 18: 5.4}
	if !reflect.DeepEqual(hours, expected) {
		t.Errorf("Sensor 5 hours mismatch:\n got %v\nwant %v", hours, expected)
	}
	// Ages absent from the fixture must not appear with a default entry
	if _, ok := hours[16]; ok {
		t.Error("Unexpected zero-filled age 16")
	}
}

func TestEnvyHistory_HeterogeneousBlocks(t *testing.T) {
	// Adjacent <data> blocks with different span letters must stay separate
	raw := `<msg><src>CC128-v0.11</src><hist>` +
		`<data><sensor>0</sensor><h004>1.1</h004><h002>1.2</h002></data>` +
		`<data><sensor>1</sensor><d001>2.5</d001><m001>30.25</m001></data>` +
		`</hist></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	expected := HistoryTable{
		0: {SpanHours: {4: 1.1, 2: 1.2}},
		1: {SpanDays: {1: 2.5}, SpanMonths: {1: 30.25}},
	}
	if !reflect.DeepEqual(msg.History(), expected) {
		t.Errorf("Table mismatch:\n got %v\nwant %v", msg.History(), expected)
	}
}

func TestEnvyHistory_SkipsBlockWithoutSensor(t *testing.T) {
	raw := `<msg><src>CC128-v0.11</src><hist>` +
		`<data><h004>1.1</h004></data>` +
		`<data><sensor>2</sensor><h004>9.9</h004></data>` +
		`</hist></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	history := msg.History()
	if len(history) != 1 {
		t.Fatalf("Expected the sensorless block skipped, got %v", history)
	}
	if history[2][SpanHours][4] != 9.9 {
		t.Errorf("Expected sensor 2 hours[4] = 9.9, got %v", history[2])
	}
}

func TestEnvyHistory_RepeatedSameLetterTags(t *testing.T) {
	raw := `<msg><src>CC128-v0.11</src><hist>` +
		`<data><sensor>0</sensor><y1>100.5</y1><y2>200.5</y2><y3>300.5</y3></data>` +
		`</hist></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	years := msg.History()[0][SpanYears]
	expected := map[int]float64{1: 100.5, 2: 200.5, 3: 300.5}
	if !reflect.DeepEqual(years, expected) {
		t.Errorf("Years mismatch:\n got %v\nwant %v", years, expected)
	}
}

func TestEnvyHistory_SensorAppearsAcrossMultipleBlocks(t *testing.T) {
	// Two blocks naming the same sensor merge into one record
	raw := `<msg><src>CC128-v0.11</src><hist>` +
		`<data><sensor>3</sensor><h002>1.5</h002></data>` +
		`<data><sensor>3</sensor><d001>4.5</d001></data>` +
		`</hist></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	record := msg.History()[3]
	if record[SpanHours][2] != 1.5 || record[SpanDays][1] != 4.5 {
		t.Errorf("Expected merged record, got %v", record)
	}
}

// ============================================================
// History Contract Tests
// ============================================================

func TestHistory_EmptyWhenAbsent(t *testing.T) {
	msg, err := Decode([]byte(envyReadingFixture))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if msg.HasHistory() {
		t.Error("Expected no history")
	}
	history := msg.History()
	if history == nil {
		t.Fatal("Expected empty table, not nil")
	}
	if len(history) != 0 {
		t.Errorf("Expected empty table, got %v", history)
	}
}

func TestHistory_Idempotent(t *testing.T) {
	msg, err := Decode([]byte(envyHistoryFixture()))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	first := msg.History()
	second := msg.History()
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected repeated History() calls to return equal tables")
	}
}
