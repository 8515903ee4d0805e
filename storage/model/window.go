package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateFormat is the wire format of window dates
const DateFormat = "2006-01-02"

// DateOf returns the calendar date of t as midnight UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a window date. Plain dates (2006-01-02) as well as RFC3339
// timestamps are accepted; the result is always truncated to the date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid date '%s'", s)
	}
	return DateOf(t), nil
}

// Window is the validity period of a saved permission matrix. Both Start and
// End are calendar dates; End is inclusive, i.e. a window is active during the
// whole end day. A window is identified by its (Start, End) pair.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow parses start and end and validates the resulting window
func NewWindow(start, end string) (Window, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Window{}, NewValidationError("start_date", "%s", err.Error())
	}
	e, err := ParseDate(end)
	if err != nil {
		return Window{}, NewValidationError("end_date", "%s", err.Error())
	}
	w := Window{
		Start: s,
		End:   e,
	}
	return w, w.Validate()
}

// IsZero reports whether no window was set
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Validate checks that the window start lies strictly before its end
func (w Window) Validate() error {
	if w.Start.IsZero() {
		return NewValidationError("start_date", "start date is required")
	}
	if w.End.IsZero() {
		return NewValidationError("end_date", "end date is required")
	}
	if !DateOf(w.Start).Before(DateOf(w.End)) {
		return NewValidationError("end_date", "end date must be after start date")
	}
	return nil
}

// Contains reports whether the calendar date of t lies within the window
func (w Window) Contains(t time.Time) bool {
	if w.IsZero() {
		return false
	}
	d := DateOf(t)
	return !d.Before(DateOf(w.Start)) && !d.After(DateOf(w.End))
}

// Bounds returns the window as the half-open UTC instant range [from, until);
// until is midnight after the end day
func (w Window) Bounds() (from, until time.Time) {
	return DateOf(w.Start), DateOf(w.End).AddDate(0, 0, 1)
}

// Equal reports whether both windows denote the same period
func (w Window) Equal(o Window) bool {
	return DateOf(w.Start).Equal(DateOf(o.Start)) && DateOf(w.End).Equal(DateOf(o.End))
}

// String returns a human-readable representation of the window
func (w Window) String() string {
	if w.IsZero() {
		return ""
	}
	return w.Start.Format(DateFormat) + " - " + w.End.Format(DateFormat)
}

type windowJSON struct {
	Start string `json:"start_date,omitempty"`
	End   string `json:"end_date,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface
func (w Window) MarshalJSON() ([]byte, error) {
	var out windowJSON
	if !w.IsZero() {
		out.Start = w.Start.Format(DateFormat)
		out.End = w.End.Format(DateFormat)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (w *Window) UnmarshalJSON(data []byte) error {
	var in windowJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Start == "" && in.End == "" {
		*w = Window{}
		return nil
	}
	s, err := ParseDate(in.Start)
	if err != nil {
		return err
	}
	e, err := ParseDate(in.End)
	if err != nil {
		return err
	}
	*w = Window{
		Start: s,
		End:   e,
	}
	return nil
}
