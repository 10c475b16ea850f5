// Package derate applies per-net resistance/capacitance derating factors to
// the flat wire RC model used by parasitics estimation, selected by a regex
// on the net name (adapted from ace/ace.go's module/instance regex selector
// of resistance/width percent adjustment factors for antenna checking — the
// same "regex selects a correction factor" shape, reused here for wire RC
// corner overrides instead of antenna diode sizing).
package derate

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// Entry is one JSON object: NetRegex selects nets by name, and Rfactor/
// Cfactor scale the flat wire resistance/capacitance per unit length for
// any matching net (spec.md §4.3's wire_res/wire_cap, before the Elmore
// reduction). A zero-value Rfactor/Cfactor from an all-default entry is
// invalid, so Load rejects either field left at 0.
type Entry struct {
	NetRegex string  `json:"net_regex"`
	Rfactor  float64 `json:"rfactor"`
	Cfactor  float64 `json:"cfactor"`
	Comment  string  `json:"comment,omitempty"`
	regex    *regexp.Regexp
}

// Table is the compiled-once derating list, checked net-by-net in the
// order loaded; the first match wins.
type Table []*Entry

// Load reads and compiles r's JSON array of Entry objects.
func Load(r io.Reader) (Table, error) {
	var table Table
	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("derate: decoding table: %w", err)
	}
	for _, e := range table {
		if e.Rfactor == 0 || e.Cfactor == 0 {
			return nil, fmt.Errorf("derate: entry %q: rfactor and cfactor must be non-zero", e.NetRegex)
		}
		e.regex = regexp.MustCompile(e.NetRegex)
	}
	return table, nil
}

// For returns the first matching entry's (rfactor, cfactor), or (1, 1) if
// no entry matches netName, so callers can multiply unconditionally.
func (t Table) For(netName string) (rfactor, cfactor float64) {
	for _, e := range t {
		if e.regex.MatchString(netName) {
			return e.Rfactor, e.Cfactor
		}
	}
	return 1, 1
}
