// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import (
	"regexp"
	"strconv"
	"strings"
)

// HistoryTable maps a sensor index to its usage record
type HistoryTable map[int]HistoryRecord

// HistoryRecord maps a span name (hours/days/months/years) to age→usage
// pairs, where age counts spans before the present
type HistoryRecord map[string]map[int]float64

var sensorTagRe = regexp.MustCompile(`<sensor>(\d+)</sensor>`)

// spanTagRes matches repeated age tags of shape <X<digits>>value</X<digits>>
// for each one-letter span prefix
var spanTagRes = map[string]*regexp.Regexp{}

func init() {
	for prefix := range spanPrefixes {
		spanTagRes[prefix] = regexp.MustCompile(`<` + prefix + `(\d+)>([^<]*)</` + prefix + `\d+>`)
	}
}

// classicHistory reconstructs the usage table from an already-parsed Classic
// hist object. A Classic meter has a single implicit sensor 0; each of the
// four fixed span groups holds keys like h02 or d01, a one-letter span
// prefix followed by the age.
func classicHistory(hist node) HistoryTable {
	rec := HistoryRecord{}
	for _, group := range classicSpanGroups {
		g, ok := childNode(hist, group)
		if !ok {
			continue
		}
		for key, val := range g {
			span, age, ok := splitSpanKey(key)
			if !ok {
				continue
			}
			s, _ := val.(string)
			bucket := rec[span]
			if bucket == nil {
				bucket = map[int]float64{}
				rec[span] = bucket
			}
			bucket[age] = atofDefault(s)
		}
	}
	return HistoryTable{0: rec}
}

// splitSpanKey decomposes a Classic history key into its span prefix and
// numeric age suffix
func splitSpanKey(key string) (string, int, bool) {
	if len(key) < 2 {
		return "", 0, false
	}
	span, ok := spanPrefixes[key[:1]]
	if !ok {
		return "", 0, false
	}
	age, err := strconv.Atoi(key[1:])
	if err != nil {
		return "", 0, false
	}
	return span, age, true
}

// envyHistory reconstructs the usage table from the raw message text, not
// the parsed tree. This is deliberate: an Envy history dump carries one
// <data> block per sensor, and adjacent identically-tagged blocks with
// heterogeneous inner tags can be silently folded together by a generic
// tree parser, losing multiplicity. Splitting the source text on the <data>
// boundary and scanning each substring tolerates any number of repeated
// same-letter tags regardless of how a tree parser would merge them.
func envyHistory(raw string) HistoryTable {
	table := HistoryTable{}
	blocks := strings.Split(raw, "<data>")
	// blocks[0] is everything before the first <data>
	for _, block := range blocks[1:] {
		m := sensorTagRe.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		idx, _ := strconv.Atoi(m[1])
		rec := table[idx]
		if rec == nil {
			rec = HistoryRecord{}
			table[idx] = rec
		}
		for prefix, span := range spanPrefixes {
			matches := spanTagRes[prefix].FindAllStringSubmatch(block, -1)
			if len(matches) == 0 {
				continue
			}
			bucket := rec[span]
			if bucket == nil {
				bucket = map[int]float64{}
				rec[span] = bucket
			}
			for _, tag := range matches {
				age, err := strconv.Atoi(tag[1])
				if err != nil {
					continue
				}
				bucket[age] = atofDefault(tag[2])
			}
		}
	}
	return table
}
