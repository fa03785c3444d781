// =============================================================================
// Finance Sheet Normalizer - Cell Cleanup Rules
// =============================================================================
//
// Cleanup rules are per-column action chains declared in a source profile and
// applied to cell text before the extractor interprets it, e.g. the SPPD trip
// number: "4120178765.0" -> strip ".0" -> digits only -> at most 10 chars.
//
// Regular expressions are compiled once when the Cleaner is built, so a bad
// pattern in a profile fails the run up front instead of on every row.
//
// =============================================================================

package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
)

var (
	digitRunPattern   = regexp.MustCompile(`\d+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

type cleanupStep struct {
	action config.CleanupAction
	re     *regexp.Regexp
	limit  int
}

// Cleaner applies the cleanup rules of one profile.
type Cleaner struct {
	steps map[string][]cleanupStep
}

// NewCleaner compiles rules. Unknown action types and invalid patterns are
// reported here.
func NewCleaner(rules []config.CleanupRule) (*Cleaner, error) {
	c := &Cleaner{steps: make(map[string][]cleanupStep, len(rules))}
	for _, rule := range rules {
		for _, action := range rule.Actions {
			step := cleanupStep{action: action}
			switch action.Type {
			case "trim", "uppercase", "normalize_whitespace", "extract_digits",
				"replace", "if_empty_use_default", "lookup":
			case "regex_replace":
				re, err := regexp.Compile(action.Find)
				if err != nil {
					return nil, fmt.Errorf("invalid regex for %s: %w", rule.Role, err)
				}
				step.re = re
			case "max_length":
				n, err := strconv.Atoi(action.Value)
				if err != nil || n <= 0 {
					return nil, fmt.Errorf("invalid max_length %q for %s", action.Value, rule.Role)
				}
				step.limit = n
			default:
				return nil, fmt.Errorf("unknown cleanup action %q for %s", action.Type, rule.Role)
			}
			c.steps[rule.Role] = append(c.steps[rule.Role], step)
		}
	}
	return c, nil
}

// Clean runs the role's action chain over value. Roles without rules pass
// through unchanged.
func (c *Cleaner) Clean(role, value string) string {
	if c == nil {
		return value
	}
	for _, step := range c.steps[role] {
		value = step.apply(value)
	}
	return value
}

func (s cleanupStep) apply(value string) string {
	a := s.action
	switch a.Type {
	case "trim":
		return strings.TrimSpace(value)
	case "uppercase":
		return strings.ToUpper(value)
	case "normalize_whitespace":
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
	case "extract_digits":
		return strings.Join(digitRunPattern.FindAllString(value, -1), "")
	case "replace":
		if a.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, a.Find, a.Value)
	case "regex_replace":
		return s.re.ReplaceAllString(value, a.Value)
	case "max_length":
		if utf8.RuneCountInString(value) <= s.limit {
			return value
		}
		return string([]rune(value)[:s.limit])
	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return a.Value
		}
		return value
	case "lookup":
		if replacement, ok := a.LookupTable[value]; ok {
			return replacement
		}
		return value
	default:
		return value
	}
}
