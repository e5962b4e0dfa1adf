package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Beat is an exact rational number of quarter-note lengths. Onsets and
// durations are kept rational so that dotted values and tuplets compare
// exactly, without floating-point drift.
type Beat struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// NewBeat creates a normalized Beat. A non-positive denominator is
// treated as 1.
func NewBeat(num, den int64) Beat {
	if den <= 0 {
		den = 1
	}
	return Beat{Num: num, Den: den}.normalize()
}

func (b Beat) normalize() Beat {
	if b.Den == 0 {
		b.Den = 1
	}
	if b.Den < 0 {
		b.Num, b.Den = -b.Num, -b.Den
	}
	g := gcd(abs64(b.Num), b.Den)
	if g > 1 {
		b.Num /= g
		b.Den /= g
	}
	if b.Den == 0 {
		b.Den = 1
	}
	return b
}

// Add returns b + o.
func (b Beat) Add(o Beat) Beat {
	return Beat{Num: b.Num*o.Den + o.Num*b.Den, Den: b.Den * o.Den}.normalize()
}

// Sub returns b - o.
func (b Beat) Sub(o Beat) Beat {
	return Beat{Num: b.Num*o.Den - o.Num*b.Den, Den: b.Den * o.Den}.normalize()
}

// Cmp compares two beats: -1 if b < o, 0 if equal, 1 if b > o.
func (b Beat) Cmp(o Beat) int {
	l := b.Num * o.Den
	r := o.Num * b.Den
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// Equal reports whether two beats denote the same rational value.
func (b Beat) Equal(o Beat) bool { return b.Cmp(o) == 0 }

// IsZero reports whether the beat is exactly zero.
func (b Beat) IsZero() bool { return b.Num == 0 }

// Float64 returns the approximate decimal value.
func (b Beat) Float64() float64 {
	if b.Den == 0 {
		return 0
	}
	return float64(b.Num) / float64(b.Den)
}

// String renders the beat as "num" or "num/den".
func (b Beat) String() string {
	n := b.normalize()
	if n.Den == 1 {
		return strconv.FormatInt(n.Num, 10)
	}
	return fmt.Sprintf("%d/%d", n.Num, n.Den)
}

// ParseBeat parses "3", "1/2" or "3/4" into a Beat.
func ParseBeat(s string) (Beat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Beat{}, fmt.Errorf("empty beat value")
	}
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Beat{}, fmt.Errorf("invalid beat %q: %w", s, err)
	}
	den := int64(1)
	if len(parts) == 2 {
		den, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return Beat{}, fmt.Errorf("invalid beat %q: %w", s, err)
		}
		if den <= 0 {
			return Beat{}, fmt.Errorf("invalid beat %q: denominator must be positive", s)
		}
	}
	return NewBeat(num, den), nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
