package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
)

// DontUsePattern is one entry of a dont_use_patterns_path JSON file: every
// liberty cell whose name matches Regex is excluded from sizing/equivalent
// selection, with Reason logged once at load time (SPEC_FULL.md §4 A4).
type DontUsePattern struct {
	CellRegex string `json:"cell_regex"`
	Reason    string `json:"reason"`
	regex     *regexp.Regexp
}

// DontUsePatterns is the compiled-once don't-use pattern list, the same
// load-then-compile shape as typespecs.New.
type DontUsePatterns []*DontUsePattern

// LoadDontUsePatterns reads and compiles path's JSON array, logging each
// pattern's reason (typespecs.New's idiom: fail loudly at load time, not at
// first match).
func LoadDontUsePatterns(path string) (DontUsePatterns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening dont-use patterns: %w", err)
	}
	defer f.Close()

	var patterns DontUsePatterns
	if err := json.NewDecoder(f).Decode(&patterns); err != nil {
		return nil, fmt.Errorf("config: parsing dont-use patterns: %w", err)
	}
	for _, p := range patterns {
		p.regex = regexp.MustCompile(p.CellRegex)
		log.Printf("dont-use pattern %q: %s", p.CellRegex, p.Reason)
	}
	return patterns, nil
}

// Matches reports whether any pattern's regex matches cellName.
func (p DontUsePatterns) Matches(cellName string) bool {
	for _, pat := range p {
		if pat.regex.MatchString(cellName) {
			return true
		}
	}
	return false
}

// Names returns every liberty cell name out of candidates that Matches
// excludes, for building resizer.Resizer.SetDontUse's input set alongside
// the explicit dont_use list.
func (p DontUsePatterns) Names(candidates []string) []string {
	var out []string
	for _, name := range candidates {
		if p.Matches(name) {
			out = append(out, name)
		}
	}
	return out
}
