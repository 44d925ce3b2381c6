package schema

import "math"

// Round4 rounds x to 4 decimal places, the precision every float crossing a
// JSON boundary must satisfy (spec §3, testable property #5).
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// IsRound4 reports whether x is already at 4-decimal precision.
func IsRound4(x float64) bool {
	return Round4(x) == x
}

// Absent is the dedicated marker type for optional string fields, used in
// place of the empty string so downstream code can distinguish "not
// provided" from "provided and empty" (spec §4.1).
type Absent struct {
	Present bool
	Value   string
}

// Some wraps a present value.
func Some(v string) Absent {
	return Absent{Present: true, Value: v}
}

// None represents an absent optional value.
func None() Absent {
	return Absent{}
}

// String returns the underlying value, or "" if absent.
func (a Absent) String() string {
	return a.Value
}

// MarshalJSON serialises an absent value as JSON null, and a present value
// as its string content.
func (a Absent) MarshalJSON() ([]byte, error) {
	if !a.Present {
		return []byte("null"), nil
	}
	return marshalQuoted(a.Value), nil
}

// UnmarshalJSON accepts both null (absent) and a JSON string (present).
func (a *Absent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = None()
		return nil
	}
	s, err := unmarshalQuoted(data)
	if err != nil {
		return err
	}
	*a = Some(s)
	return nil
}
