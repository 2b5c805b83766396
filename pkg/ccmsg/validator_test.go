// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import "testing"

func TestValidateMessage_Clean(t *testing.T) {
	msg, err := Decode([]byte(envyReadingFixture))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if anomalies := ValidateMessage(msg); len(anomalies) != 0 {
		t.Errorf("Expected no anomalies, got %v", anomalies)
	}
}

func TestValidateMessage_HighPower(t *testing.T) {
	raw := `<msg><src>CC128-v0.11</src><ch1><watts>99999</watts></ch1></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	anomalies := ValidateMessage(msg)
	if len(anomalies) != 1 {
		t.Fatalf("Expected one anomaly, got %v", anomalies)
	}
	if anomalies[0].Type != AnomalyHighPower {
		t.Errorf("Expected AnomalyHighPower, got %v", anomalies[0].Type)
	}
}

func TestValidateMessage_InvalidTemperature(t *testing.T) {
	raw := `<msg><src>CC128-v0.11</src><tmpr>120.5</tmpr></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	anomalies := ValidateMessage(msg)
	if len(anomalies) != 1 || anomalies[0].Type != AnomalyInvalidTemp {
		t.Errorf("Expected a temperature anomaly, got %v", anomalies)
	}
}

func TestValidateMessage_InvalidClock(t *testing.T) {
	raw := `<msg><src>CC128-v0.11</src><time>25:61:00</time></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	anomalies := ValidateMessage(msg)
	if len(anomalies) != 1 || anomalies[0].Type != AnomalyInvalidClock {
		t.Errorf("Expected a clock anomaly, got %v", anomalies)
	}
}

func TestValidateMessage_NeverBlocksDecode(t *testing.T) {
	// An anomalous message is still a fully decoded message
	raw := `<msg><src>CC128-v0.11</src><tmpr>-100</tmpr><ch1><watts>50000</watts></ch1></msg>`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if anomalies := ValidateMessage(msg); len(anomalies) != 2 {
		t.Errorf("Expected two anomalies, got %v", ValidateMessage(msg))
	}
	if v, ok := msg.Value(); !ok || v != 50000.0 {
		t.Errorf("Expected the reading still decoded, got %v (present=%v)", v, ok)
	}
}
