package triage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Channel string

const (
	Physical Channel = "Physical"
	Online   Channel = "Online"
)

func (c Channel) Valid() bool { return c == Physical || c == Online }

// Suggestion is advisory; staff may still set either channel on the lot.
// Fallback is true when the estimate could not be read and Triage is the
// default channel rather than a classification.
type Suggestion struct {
	Triage   Channel `json:"suggested_triage"`
	Reason   string  `json:"reason"`
	Fallback bool    `json:"fallback"`
}

type Policy struct {
	Threshold decimal.Decimal
	Default   Channel
}

func DefaultPolicy() Policy {
	return Policy{Threshold: decimal.NewFromInt(20000), Default: Physical}
}

// Suggest classifies a lower estimate: strictly above the threshold goes to
// the saleroom, everything else to the online stream.
func (p Policy) Suggest(estimateLow float64) Suggestion {
	if math.IsNaN(estimateLow) || math.IsInf(estimateLow, 0) || estimateLow <= 0 {
		return p.fallback("the lower estimate must be a positive amount")
	}

	est := decimal.NewFromFloat(estimateLow)
	if est.GreaterThan(p.Threshold) {
		return Suggestion{
			Triage: Physical,
			Reason: fmt.Sprintf("Items above %s are offered in the Physical saleroom. This item's lower estimate is %s.",
				Pounds(p.Threshold), Pounds(est)),
		}
	}
	return Suggestion{
		Triage: Online,
		Reason: fmt.Sprintf("Items at or below %s typically go to the Online stream. This item's lower estimate is %s.",
			Pounds(p.Threshold), Pounds(est)),
	}
}

// SuggestRaw accepts the estimate as typed into a form ("12,500", "£8000").
// It never fails: unreadable input yields the default channel.
func (p Policy) SuggestRaw(raw string) Suggestion {
	cleaned := strings.NewReplacer(",", "", "£", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return p.fallback("no lower estimate was given")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return p.fallback(fmt.Sprintf("%q is not a valid amount", raw))
	}
	return p.Suggest(v)
}

func (p Policy) fallback(why string) Suggestion {
	ch := p.Default
	if !ch.Valid() {
		ch = Physical
	}
	return Suggestion{
		Triage:   ch,
		Reason:   fmt.Sprintf("Could not suggest a channel: %s. Defaulting to %s for staff review.", why, ch),
		Fallback: true,
	}
}

// Pounds formats an amount as whole pounds with thousands separators.
func Pounds(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-£" + b.String()
	}
	return "£" + b.String()
}
