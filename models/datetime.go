package models

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the wire format of every timestamp both services exchange.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime is a time.Time that marshals as DateTimeLayout.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC().Truncate(time.Second)}
}

func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q must match %q", s, DateTimeLayout)
	}
	return t, nil
}

func FormatDateTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + FormatDateTime(d.Time) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// DateTimePtr returns nil for the zero time.
func DateTimePtr(t time.Time) *DateTime {
	if t.IsZero() {
		return nil
	}
	d := NewDateTime(t)
	return &d
}
