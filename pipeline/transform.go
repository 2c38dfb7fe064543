package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultMissingTokens are the cell values read as missing, in addition to
// blank cells.
var DefaultMissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

type missingSet map[string]struct{}

func newMissingSet(tokens []string) missingSet {
	if tokens == nil {
		tokens = DefaultMissingTokens
	}
	set := make(missingSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func (m missingSet) isMissing(raw string, present bool) bool {
	if !present {
		return true
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	_, ok := m[trimmed]
	return ok
}

// applyColumn runs one column spec against its raw cell and stores the
// result in rec.
func (p *Pipeline) applyColumn(rec Record, spec ColumnSpec, line int, raw string, present bool) error {
	if p.missing.isMissing(raw, present) {
		for _, f := range spec.Fields {
			rec[f] = nil
		}
		return nil
	}

	fail := func(err error) error {
		return &FormatError{Line: line, Column: spec.Source, Value: raw, Err: err}
	}

	switch spec.Transform {
	case TransformText:
		rec[spec.Fields[0]] = raw
	case TransformFloat:
		f, err := parseFloat(raw)
		if err != nil {
			return fail(err)
		}
		rec[spec.Fields[0]] = f
	case TransformBool:
		v, err := p.parseBool(raw)
		if err != nil {
			return fail(err)
		}
		rec[spec.Fields[0]] = v
	case TransformSplit:
		a, b, err := splitPair(raw, spec.delimiter())
		if err != nil {
			return fail(err)
		}
		rec[spec.Fields[0]] = a
		rec[spec.Fields[1]] = b
	default:
		return fail(fmt.Errorf("%w: unknown transform %q", ErrInvalidDefinition, spec.Transform))
	}
	return nil
}

// parseBool maps the exact tokens TRUE and FALSE. Any other token is
// returned unchanged unless strict booleans are enabled.
func (p *Pipeline) parseBool(raw string) (any, error) {
	switch raw {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	}
	if p.def.StrictBooleans {
		return nil, ErrUnknownBoolean
	}
	return raw, nil
}

func parseFloat(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotNumeric
	}
	return f, nil
}

// splitPair splits "a,b" into two floats. A leading "=" left by spreadsheet
// exports is ignored.
func splitPair(raw, delim string) (float64, float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimPrefix(s, "="))
	parts := strings.Split(s, delim)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrSplitArity, len(parts))
	}
	a, err := parseFloat(parts[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parseFloat(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
