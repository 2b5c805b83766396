// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatValue renders a numeric value as plain decimal, with leading and
// trailing zero padding stripped
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Summary produces a deterministic multi-line report of the message, each
// line prefixed with prefix. Two decodes of identical input always produce
// byte-identical summaries.
func (m *Message) Summary(prefix string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%sDevice: %s %s\n", prefix, m.deviceName, m.deviceVersion)

	if m.HasReadings() {
		sensor, _ := m.Sensor()
		id, _ := m.ReadingID()
		readingType, _ := m.ReadingType()
		fmt.Fprintf(&b, "%s  Sensor: %d [%s,%d]\n", prefix, sensor, id, readingType)

		units, _ := m.Units()
		total, _ := m.Value()
		fmt.Fprintf(&b, "%s  Total: %s %s\n", prefix, FormatValue(total), units)

		// Phases with no data are skipped, not zero-filled
		for ch := 1; ch <= MaxChannels; ch++ {
			if v, ok := m.ChannelValue(ch); ok {
				fmt.Fprintf(&b, "%s  Phase %d: %s %s\n", prefix, ch, FormatValue(v), units)
			}
		}
	}

	if m.HasHistory() {
		fmt.Fprintf(&b, "%s  History\n", prefix)
		sensors := make([]int, 0, len(m.history))
		for s := range m.history {
			sensors = append(sensors, s)
		}
		sort.Ints(sensors)

		for _, s := range sensors {
			fmt.Fprintf(&b, "%s    Sensor %d\n", prefix, s)
			record := m.history[s]

			spans := make([]string, 0, len(record))
			for span := range record {
				spans = append(spans, span)
			}
			sort.Strings(spans)

			for _, span := range spans {
				ages := make([]int, 0, len(record[span]))
				for age := range record[span] {
					ages = append(ages, age)
				}
				sort.Ints(ages)
				for _, age := range ages {
					fmt.Fprintf(&b, "%s      -%d %s: %s\n", prefix, age, span, FormatValue(record[span][age]))
				}
			}
		}
	}

	return b.String()
}

// FormatMessage formats a decoded message for live display: a timestamped
// header line followed by the indented summary
func FormatMessage(m *Message) string {
	timestamp := m.timestamp.Format("15:04:05.000")
	return fmt.Sprintf("[%s] %s\n", timestamp, m.variant) + m.Summary("  ")
}
