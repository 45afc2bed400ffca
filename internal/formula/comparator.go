package formula

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/shopspring/decimal"
)

// Comparator tests a value against a threshold.
type Comparator string

const (
	GT  Comparator = "gt"
	GTE Comparator = "gte"
	EQ  Comparator = "eq"
	LTE Comparator = "lte"
	LT  Comparator = "lt"
)

var comparatorAliases = map[string]Comparator{
	"gt": GT, ">": GT, "over": GT,
	"gte": GTE, ">=": GTE,
	"eq": EQ, "=": EQ, "==": EQ,
	"lte": LTE, "<=": LTE,
	"lt": LT, "<": LT, "under": LT,
}

// ParseComparator accepts the canonical names and their symbolic forms.
func ParseComparator(raw string) (Comparator, bool) {
	c, ok := comparatorAliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// Test reports whether v satisfies the comparison. Every finite input yields
// exactly one of pass or fail.
func (c Comparator) Test(v, threshold decimal.Decimal) bool {
	cmp := v.Cmp(threshold)
	switch c {
	case GT:
		return cmp > 0
	case GTE:
		return cmp >= 0
	case EQ:
		return cmp == 0
	case LTE:
		return cmp <= 0
	case LT:
		return cmp < 0
	default:
		return false
	}
}

// Band is one side's threshold test.
type Band struct {
	Comparator string   `json:"comparator"`
	Threshold  *float64 `json:"threshold"`
}

func (b Band) validate(side string) error {
	if _, ok := ParseComparator(b.Comparator); !ok {
		return fmt.Errorf("%s.comparator %q must be one of gt, gte, eq, lte, lt", side, b.Comparator)
	}
	if b.Threshold == nil {
		return fmt.Errorf("%s.threshold is required", side)
	}
	return nil
}

// Test applies the band to v. An invalid band never passes.
func (b Band) Test(v decimal.Decimal) bool {
	c, ok := ParseComparator(b.Comparator)
	if !ok || b.Threshold == nil {
		return false
	}
	return c.Test(v, decimal.NewFromFloat(*b.Threshold))
}

func (b Band) String() string {
	if b.Threshold == nil {
		return b.Comparator
	}
	c, _ := ParseComparator(b.Comparator)
	return fmt.Sprintf("%s %s", c, decimal.NewFromFloat(*b.Threshold).String())
}

// WinnerRule decides which value wins a head-to-head comparison.
type WinnerRule string

const (
	Higher WinnerRule = "higher"
	Lower  WinnerRule = "lower"
)

func parseWinnerRule(raw string) (WinnerRule, bool) {
	switch WinnerRule(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Higher:
		return Higher, true
	case Lower:
		return Lower, true
	}
	return "", false
}

// decideOverUnder gives A the win only when A passes and B fails, and the
// reverse for B. Both or neither passing is a push.
func decideOverUnder(v decimal.Decimal, a, b Band) props.Winner {
	passA, passB := a.Test(v), b.Test(v)
	switch {
	case passA && !passB:
		return props.WinnerA
	case passB && !passA:
		return props.WinnerB
	default:
		return props.WinnerPush
	}
}

func decideHeadToHead(a, b decimal.Decimal, rule WinnerRule) props.Winner {
	cmp := a.Cmp(b)
	if rule == Lower {
		cmp = -cmp
	}
	switch {
	case cmp > 0:
		return props.WinnerA
	case cmp < 0:
		return props.WinnerB
	default:
		return props.WinnerPush
	}
}
