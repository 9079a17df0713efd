// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// complexArgTypes are the ICU argument types that carry branch lists.
var complexArgTypes = map[string]bool{
	"plural":        true,
	"select":        true,
	"selectordinal": true,
}

// simpleArgTypes are the ICU argument types that take at most a style suffix.
var simpleArgTypes = map[string]bool{
	"number": true,
	"date":   true,
	"time":   true,
}

// ValidateICU parses text as an ICU-style message and returns a descriptive
// error on the first syntax problem. It understands simple arguments
// ({name}), formatted arguments ({n, number, percent}), plural/select/
// selectordinal constructs with nested messages, and ICU apostrophe escaping
// ('' for a literal apostrophe, '...' quoting around syntax characters).
func ValidateICU(text string) error {
	p := &icuParser{input: []rune(text)}
	if err := p.parseMessage(0); err != nil {
		return err
	}
	if p.pos < len(p.input) {
		return fmt.Errorf("unmatched '}' at position %d", p.pos)
	}
	return nil
}

type icuParser struct {
	input []rune
	pos   int
}

// parseMessage consumes message text until end of input or an unconsumed '}'
// belonging to the enclosing construct. depth is the nesting level; a '}' at
// depth 0 is left for the caller to flag.
func (p *icuParser) parseMessage(depth int) error {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '\'':
			p.consumeQuoted()
		case '{':
			if err := p.parseArgument(depth); err != nil {
				return err
			}
		case '}':
			if depth > 0 {
				return nil
			}
			return nil // unmatched; reported by ValidateICU
		default:
			p.pos++
		}
	}
	return nil
}

// consumeQuoted handles ICU apostrophe escaping. A doubled apostrophe is a
// literal; an apostrophe followed by a syntax character opens a quoted span
// that runs to the next single apostrophe (or end of input, which ICU treats
// as quoted-to-end).
func (p *icuParser) consumeQuoted() {
	p.pos++ // opening apostrophe
	if p.pos >= len(p.input) {
		return
	}
	c := p.input[p.pos]
	if c == '\'' {
		p.pos++
		return
	}
	if c != '{' && c != '}' && c != '#' {
		// Plain apostrophe in text, not an escape.
		return
	}
	for p.pos < len(p.input) {
		if p.input[p.pos] == '\'' {
			p.pos++
			return
		}
		p.pos++
	}
}

// parseArgument consumes one {...} construct starting at the current '{'.
func (p *icuParser) parseArgument(depth int) error {
	start := p.pos
	p.pos++ // '{'
	p.skipSpace()

	name := p.readIdentifier()
	if name == "" {
		return fmt.Errorf("argument at position %d has no name", start)
	}
	p.skipSpace()

	if p.pos >= len(p.input) {
		return fmt.Errorf("unclosed argument %q at position %d", name, start)
	}

	switch p.input[p.pos] {
	case '}':
		p.pos++
		return nil
	case ',':
		p.pos++
	default:
		return fmt.Errorf("unexpected %q in argument %q at position %d", string(p.input[p.pos]), name, p.pos)
	}

	p.skipSpace()
	argType := p.readIdentifier()
	p.skipSpace()

	switch {
	case complexArgTypes[argType]:
		if p.pos >= len(p.input) || p.input[p.pos] != ',' {
			return fmt.Errorf("%s argument %q at position %d is missing its branches", argType, name, start)
		}
		p.pos++
		return p.parseBranches(name, argType, depth)
	case simpleArgTypes[argType]:
		// Optional style: {n, number, percent}.
		if p.pos < len(p.input) && p.input[p.pos] == ',' {
			p.pos++
			p.skipSpace()
			for p.pos < len(p.input) && p.input[p.pos] != '}' {
				p.pos++
			}
		}
		if p.pos >= len(p.input) || p.input[p.pos] != '}' {
			return fmt.Errorf("unclosed %s argument %q at position %d", argType, name, start)
		}
		p.pos++
		return nil
	default:
		return fmt.Errorf("unknown argument type %q for %q at position %d", argType, name, start)
	}
}

// parseBranches consumes a plural/select branch list: selector {message} pairs
// up to the closing '}'. An "other" branch is required.
func (p *icuParser) parseBranches(name, argType string, depth int) error {
	sawOther := false
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return fmt.Errorf("unclosed %s argument %q", argType, name)
		}
		if p.input[p.pos] == '}' {
			p.pos++
			if !sawOther {
				return fmt.Errorf("%s argument %q has no \"other\" branch", argType, name)
			}
			return nil
		}

		selector := p.readSelector()
		if selector == "" {
			return fmt.Errorf("%s argument %q has a branch with no selector at position %d", argType, name, p.pos)
		}
		if selector == "other" {
			sawOther = true
		}

		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != '{' {
			return fmt.Errorf("branch %q of %q is missing its message at position %d", selector, name, p.pos)
		}
		p.pos++
		if err := p.parseMessage(depth + 1); err != nil {
			return err
		}
		if p.pos >= len(p.input) || p.input[p.pos] != '}' {
			return fmt.Errorf("branch %q of %q is not closed", selector, name)
		}
		p.pos++
	}
}

// readIdentifier consumes an argument or type name: letters, digits, underscores.
func (p *icuParser) readIdentifier() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return string(p.input[start:p.pos])
}

// readSelector consumes a branch selector: a keyword, an identifier, or an
// exact-match form like "=0".
func (p *icuParser) readSelector() string {
	start := p.pos
	if p.pos < len(p.input) && p.input[p.pos] == '=' {
		p.pos++
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return string(p.input[start:p.pos])
}

func (p *icuParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

// extractPlaceholders returns the sorted set of top-level argument names in an
// ICU-style message. Nested messages inside plural/select branches are not
// descended into; the construct contributes only its own argument name.
// Malformed input yields a best-effort set; syntax problems are reported
// separately by ValidateICU.
func extractPlaceholders(text string) []string {
	seen := make(map[string]bool)
	depth := 0
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		switch runes[i] {
		case '\'':
			i++
			if i < len(runes) && (runes[i] == '{' || runes[i] == '}' || runes[i] == '#') {
				for i < len(runes) && runes[i] != '\'' {
					i++
				}
			}
			i++
		case '{':
			depth++
			if depth == 1 {
				j := i + 1
				for j < len(runes) && runes[j] != ',' && runes[j] != '}' && runes[j] != '{' {
					j++
				}
				name := strings.TrimSpace(string(runes[i+1 : j]))
				if name != "" {
					seen[name] = true
				}
			}
			i++
		case '}':
			if depth > 0 {
				depth--
			}
			i++
		default:
			i++
		}
	}

	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
