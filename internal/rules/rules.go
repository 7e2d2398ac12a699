// Package rules loads the rule tables of the missal: the ordered blocks of
// movable observances and the fixed-date observances.
//
// The default tables are embedded in the binary. A YAML file with the same
// layout can replace them:
//
//	blocks:
//	  adventus:
//	    - ["dom_adventus_1:1", "f2_adventus_1:3", ...]
//	fixed_days:
//	  - "12_25.nativitas_domini:1"
//
// Each block is a list of weeks, flattened in order when loaded.
package rules

import (
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"github.com/zapponejosh/missal1962/internal/calendar"
)

//go:embed missal1962.yaml
var defaultTables []byte

// DefaultSource names the embedded tables.
const DefaultSource = "embedded:missal1962.yaml"

var (
	// ErrUnknownBlock is returned when a block is not defined.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrInvalidRules is returned when the tables fail validation.
	ErrInvalidRules = errors.New("invalid rule tables")
)

// document is the YAML layout of a rule file.
type document struct {
	Blocks    map[string][][]string `yaml:"blocks"`
	FixedDays []string              `yaml:"fixed_days"`
}

// Rules holds parsed rule tables. It is read-only after loading and safe
// for concurrent use.
type Rules struct {
	source      string
	fingerprint string
	blocks map[string][]string
	fixed  map[string][]string // keyed by MM_DD
	count  int
}

var _ calendar.Tables = (*Rules)(nil)

// Default returns the embedded 1962 tables.
func Default() (*Rules, error) {
	return Parse(defaultTables, DefaultSource)
}

// Load reads rule tables from a YAML file.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data, path)
}

// LoadOrDefault loads path, or the embedded tables when path is empty.
func LoadOrDefault(path string) (*Rules, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse decodes and validates YAML rule tables. source is only used in
// error messages and Source.
func Parse(data []byte, source string) (*Rules, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", source, err)
	}

	sum := blake3.Sum256(data)
	r := &Rules{
		source:      source,
		fingerprint: "blake3:" + hex.EncodeToString(sum[:]),
		blocks:      make(map[string][]string, len(doc.Blocks)),
		fixed:       make(map[string][]string),
	}

	var errs []error
	for name, weeks := range doc.Blocks {
		var tokens []string
		for _, week := range weeks {
			for _, token := range week {
				if err := checkToken(token); err != nil {
					errs = append(errs, fmt.Errorf("block %q: %w", name, err))
				}
			}
			tokens = append(tokens, week...)
		}
		r.blocks[name] = tokens
	}

	for _, token := range doc.FixedDays {
		key, err := fixedDayKey(token)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := checkToken(token); err != nil {
			errs = append(errs, fmt.Errorf("fixed day: %w", err))
			continue
		}
		r.fixed[key] = append(r.fixed[key], token)
		r.count++
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRules, source, err)
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return r, nil
}

// Validate checks that every block the builder needs is present and holds
// at least one token.
func (r *Rules) Validate() error {
	var errs []error
	for _, name := range calendar.RequiredBlocks {
		tokens, ok := r.blocks[name]
		if !ok {
			errs = append(errs, fmt.Errorf("block %q is missing", name))
			continue
		}
		if !hasToken(tokens) {
			errs = append(errs, fmt.Errorf("block %q has no tokens", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRules, errors.Join(errs...))
	}
	return nil
}

// Block returns a copy of the named block's tokens.
func (r *Rules) Block(name string) ([]string, error) {
	tokens, ok := r.blocks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, name)
	}
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out, nil
}

// FixedDays returns the fixed-date tokens of the given day in table order.
func (r *Rules) FixedDays(month time.Month, day int) []string {
	tokens := r.fixed[fmt.Sprintf("%02d_%02d", int(month), day)]
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out
}

// BlockNames returns the defined block names, sorted.
func (r *Rules) BlockNames() []string {
	names := make([]string, 0, len(r.blocks))
	for name := range r.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FixedDayCount returns the number of fixed-date tokens.
func (r *Rules) FixedDayCount() int {
	return r.count
}

// Source describes where the tables were loaded from.
func (r *Rules) Source() string {
	return r.source
}

// Fingerprint identifies the content of the tables. Two tables with the
// same fingerprint build identical years.
func (r *Rules) Fingerprint() string {
	return r.fingerprint
}

// checkToken rejects tokens whose precedence suffix would not survive a
// round trip through calendar.Identifier, such as "x:02" or "x:+3".
func checkToken(token string) error {
	if calendar.ParseIdentifier(token).String() != token {
		return fmt.Errorf("token %q: precedence must be a plain integer", token)
	}
	return nil
}

// fixedDayKey extracts and checks the MM_DD prefix of a fixed-date token.
// The prefix may be followed by the end of the token, "." or "_".
func fixedDayKey(token string) (string, error) {
	if len(token) < 5 || token[2] != '_' {
		return "", fmt.Errorf("fixed day %q: missing MM_DD prefix", token)
	}
	if len(token) > 5 && token[5] != '.' && token[5] != '_' && token[5] != ':' {
		return "", fmt.Errorf("fixed day %q: malformed MM_DD prefix", token)
	}
	month, err := strconv.Atoi(token[:2])
	if err != nil {
		return "", fmt.Errorf("fixed day %q: bad month: %w", token, err)
	}
	day, err := strconv.Atoi(token[3:5])
	if err != nil {
		return "", fmt.Errorf("fixed day %q: bad day: %w", token, err)
	}
	// 2000 is a leap year, so February 29 is accepted.
	d := time.Date(2000, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if month < 1 || month > 12 || d.Month() != time.Month(month) || d.Day() != day {
		return "", fmt.Errorf("fixed day %q: no such date", token)
	}
	return token[:5], nil
}

func hasToken(tokens []string) bool {
	for _, t := range tokens {
		if t != "" {
			return true
		}
	}
	return false
}
