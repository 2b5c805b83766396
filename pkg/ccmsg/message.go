// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import (
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is the meter's clock reading, normalized across generations
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// Channel is one live power-reading line: the unit name and the raw value
// string exactly as the meter sent it
type Channel struct {
	Units string
	Raw   string
}

// Message is one decoded telemetry fragment. It is constructed once by a
// Decoder and immutable thereafter; derived fields (the reading total, the
// history table) are computed eagerly at decode time so a *Message can be
// shared across goroutines without locks.
type Message struct {
	variant Variant

	deviceName    string
	deviceVersion string

	// Classic identity fields
	deviceID      string
	hasDeviceID   bool
	sensorType    int
	hasSensorType bool

	daysSinceBoot int
	timeOfDay     TimeOfDay

	temperature    float64
	hasTemperature bool

	// Envy live-reading identity fields
	sensor         int
	hasSensor      bool
	readingID      string
	hasReadingID   bool
	readingType    int
	hasReadingType bool

	channels map[int]Channel

	hasHist bool
	history HistoryTable

	total float64

	timestamp time.Time
}

// Variant returns which device generation produced the message
func (m *Message) Variant() Variant {
	return m.variant
}

// DeviceName returns the device's model name (e.g. "CC128")
func (m *Message) DeviceName() string {
	return m.deviceName
}

// DeviceVersion returns the device's firmware version string. Empty for an
// Envy source string with no hyphen.
func (m *Message) DeviceVersion() string {
	return m.deviceVersion
}

// DeviceID returns the Classic identity field, if present
func (m *Message) DeviceID() (string, bool) {
	return m.deviceID, m.hasDeviceID
}

// SensorType returns the Classic sensor type field, if present
func (m *Message) SensorType() (int, bool) {
	return m.sensorType, m.hasSensorType
}

// DaysSinceBoot returns the whole days elapsed since the meter booted
func (m *Message) DaysSinceBoot() int {
	return m.daysSinceBoot
}

// TimeOfDay returns the meter's clock reading
func (m *Message) TimeOfDay() TimeOfDay {
	return m.timeOfDay
}

// Temperature returns the ambient temperature reading, if present
func (m *Message) Temperature() (float64, bool) {
	return m.temperature, m.hasTemperature
}

// Sensor returns the reporting sensor index. Envy messages carry it
// explicitly; a Classic meter has a single implicit sensor 0, matching its
// history table key.
func (m *Message) Sensor() (int, bool) {
	if m.hasSensor {
		return m.sensor, true
	}
	if m.variant == VariantClassic {
		return 0, true
	}
	return 0, false
}

// ReadingID returns the reading identity: the Envy id field, or the Classic
// device id
func (m *Message) ReadingID() (string, bool) {
	if m.hasReadingID {
		return m.readingID, true
	}
	return m.deviceID, m.hasDeviceID
}

// ReadingType returns the reading type: the Envy type field, or the Classic
// sensor type
func (m *Message) ReadingType() (int, bool) {
	if m.hasReadingType {
		return m.readingType, true
	}
	return m.sensorType, m.hasSensorType
}

// Channels returns the live-reading channels keyed by channel index (1..3)
func (m *Message) Channels() map[int]Channel {
	return m.channels
}

// HasReadings reports whether the message carries live readings
func (m *Message) HasReadings() bool {
	return len(m.channels) > 0
}

// HasHistory reports whether the message carried a history block
func (m *Message) HasHistory() bool {
	return m.hasHist
}

// Units returns the unit name of the live readings. Absent when the message
// carries no readings; callers must treat that as "nothing to report". Units
// are assumed consistent across channels and are deliberately not verified,
// matching the meters' own wire format.
func (m *Message) Units() (string, bool) {
	if ch, ok := m.channels[1]; ok {
		return ch.Units, true
	}
	for i := 2; i <= MaxChannels; i++ {
		if ch, ok := m.channels[i]; ok {
			return ch.Units, true
		}
	}
	return "", false
}

// Value returns the total power across all channels. Absent when the message
// carries no readings at all; a missing or garbled channel contributes zero.
func (m *Message) Value() (float64, bool) {
	if !m.HasReadings() {
		return 0, false
	}
	return m.total, true
}

// ChannelValue returns one channel's reading as a float. Absent when the
// channel is missing or its raw value is not numeric.
func (m *Message) ChannelValue(ch int) (float64, bool) {
	c, ok := m.channels[ch]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BootTimeSeconds returns the elapsed seconds since the meter booted,
// derived from days-since-boot plus time-of-day
func (m *Message) BootTimeSeconds() int {
	return m.daysSinceBoot*secondsPerDay +
		m.timeOfDay.Hour*secondsPerHour +
		m.timeOfDay.Minute*secondsPerMinute +
		m.timeOfDay.Second
}

// History returns the reconstructed usage table, keyed by sensor index.
// Empty, never nil, when the message carried no history block.
func (m *Message) History() HistoryTable {
	return m.history
}

// Timestamp returns the message's decode timestamp
func (m *Message) Timestamp() time.Time {
	return m.timestamp
}

// computeTotal sums the channel readings; called once at decode time
func (m *Message) computeTotal() {
	var total float64
	for ch := 1; ch <= MaxChannels; ch++ {
		if v, ok := m.ChannelValue(ch); ok {
			total += v
		}
	}
	m.total = total
}
