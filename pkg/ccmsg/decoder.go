// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Decoder decodes raw markup fragments into Messages. The zero-value
// configuration logs nothing; pass WithLogger to get per-message
// diagnostics.
type Decoder struct {
	log zerolog.Logger
}

// Option configures a Decoder
type Option func(*Decoder)

// WithLogger injects a diagnostics logger into the decoder
func WithLogger(log zerolog.Logger) Option {
	return func(d *Decoder) {
		d.log = log
	}
}

// NewDecoder creates a new message decoder
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode decodes a single raw markup fragment with the default decoder
func Decode(raw []byte) (*Message, error) {
	return defaultDecoder.Decode(raw)
}

// Decode decodes a single raw markup fragment. The only fatal outcome is
// ErrMalformedMessage for text that does not parse as markup; past that
// point extraction is best-effort field by field.
func (d *Decoder) Decode(raw []byte) (*Message, error) {
	tree, err := parseTree(raw)
	if err != nil {
		d.log.Debug().Err(err).Msg("fragment failed to parse")
		return nil, err
	}

	// An unexpected root tag is not a classification error: field lookups
	// just come up absent, like any other missing field.
	root, _ := childNode(tree, "msg")

	var msg *Message
	switch classify(root) {
	case VariantClassic:
		msg = d.decodeClassic(root)
	default:
		msg = d.decodeEnvy(root, raw)
	}
	msg.computeTotal()
	msg.timestamp = time.Now()

	d.log.Debug().
		Stringer("variant", msg.variant).
		Str("device", msg.deviceName).
		Bool("readings", msg.HasReadings()).
		Bool("history", msg.HasHistory()).
		Msg("decoded message")

	return msg, nil
}

// classify selects the decoding path from the top-level identity field: a
// nested src object with a name key is Classic, anything else (a bare
// scalar, or nothing at all) is Envy. The decision is two-way exhaustive;
// there is no unknown outcome.
func classify(root node) Variant {
	if src, ok := childNode(root, "src"); ok {
		if _, ok := childScalar(src, "name"); ok {
			return VariantClassic
		}
	}
	return VariantEnvy
}

// decodeClassic populates the model for the older schema: a single sensor,
// identity in a nested src object, clock in a nested date object
func (d *Decoder) decodeClassic(root node) *Message {
	m := &Message{
		variant:  VariantClassic,
		channels: map[int]Channel{},
		history:  HistoryTable{},
	}

	if src, ok := childNode(root, "src"); ok {
		m.deviceName, _ = childScalar(src, "name")
		m.deviceVersion, _ = childScalar(src, "sver")
		if id, ok := childScalar(src, "id"); ok {
			m.deviceID, m.hasDeviceID = id, true
		}
		if t, ok := childScalar(src, "type"); ok {
			m.sensorType, m.hasSensorType = atoiDefault(t), true
		}
	}

	if date, ok := childNode(root, "date"); ok {
		m.daysSinceBoot = intField(date, "dsb")
		m.timeOfDay = TimeOfDay{
			Hour:   intField(date, "hr"),
			Minute: intField(date, "min"),
			Second: intField(date, "sec"),
		}
	}

	d.decodeTemperature(m, root)
	d.decodeChannels(m, root)

	if hist, ok := childNode(root, "hist"); ok {
		m.hasHist = true
		m.history = classicHistory(hist)
	}

	return m
}

// decodeEnvy populates the model for the newer schema: multi-sensor, device
// identity in a single delimited string, clock in an HH:MM:SS token. History
// reconstruction operates on the raw text, not the tree (see envyHistory).
func (d *Decoder) decodeEnvy(root node, raw []byte) *Message {
	m := &Message{
		variant:  VariantEnvy,
		channels: map[int]Channel{},
		history:  HistoryTable{},
	}

	if src, ok := childScalar(root, "src"); ok {
		name, version, _ := strings.Cut(src, "-")
		m.deviceName = name
		m.deviceVersion = version
	}

	m.daysSinceBoot = intField(root, "dsb")

	if clock, ok := childScalar(root, "time"); ok {
		parts := strings.Split(clock, ":")
		if len(parts) > 0 {
			m.timeOfDay.Hour = atoiDefault(parts[0])
		}
		if len(parts) > 1 {
			m.timeOfDay.Minute = atoiDefault(parts[1])
		}
		if len(parts) > 2 {
			m.timeOfDay.Second = atoiDefault(parts[2])
		}
	}

	if s, ok := childScalar(root, "sensor"); ok {
		m.sensor, m.hasSensor = atoiDefault(s), true
	}
	if id, ok := childScalar(root, "id"); ok {
		m.readingID, m.hasReadingID = id, true
	}
	if t, ok := childScalar(root, "type"); ok {
		m.readingType, m.hasReadingType = atoiDefault(t), true
	}

	d.decodeTemperature(m, root)
	d.decodeChannels(m, root)

	if _, ok := root["hist"]; ok {
		m.hasHist = true
		m.history = envyHistory(string(raw))
	}

	return m
}

// decodeTemperature extracts the optional tmpr scalar; a garbled value is
// treated as absent, never an error
func (d *Decoder) decodeTemperature(m *Message, root node) {
	s, ok := childScalar(root, "tmpr")
	if !ok {
		return
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		d.log.Debug().Str("tmpr", s).Msg("non-numeric temperature ignored")
		return
	}
	m.temperature, m.hasTemperature = parsed, true
}

// decodeChannels populates the live-reading channels from ch1..ch3. Each is
// a single-key object: unit name to raw value string. Units are assumed
// consistent across channels and not checked, matching the wire format.
func (d *Decoder) decodeChannels(m *Message, root node) {
	for i := 1; i <= MaxChannels; i++ {
		ch, ok := childNode(root, fmt.Sprintf("ch%d", i))
		if !ok {
			continue
		}
		units := make([]string, 0, len(ch))
		for unit := range ch {
			units = append(units, unit)
		}
		sort.Strings(units)
		for _, unit := range units {
			if raw, ok := ch[unit].(string); ok {
				m.channels[i] = Channel{Units: unit, Raw: raw}
				break
			}
		}
	}
}
