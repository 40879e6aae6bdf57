package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Precision is the precision of a timestamp.
type Precision uint8

const (
	PrecisionYear Precision = iota + 1
	PrecisionMonth
	PrecisionDay
	PrecisionMinute
	PrecisionSecond
	PrecisionFraction
)

// MaxFractionDigits is the maximum number of fractional second digits a timestamp can hold.
const MaxFractionDigits = 9

// Timestamp is a point in time with an explicit precision and an optionally known offset.
type Timestamp struct {
	// Time is the instant. Its location carries the local offset when the offset is known.
	Time time.Time
	// Precision is the most precise field that is significant.
	Precision Precision
	// FractionDigits is the number of significant fractional second digits.
	FractionDigits uint8
	// OffsetKnown is false when the local offset is unknown (-00:00).
	OffsetKnown bool
}

// NewTimestampFromTime returns a timestamp with a known offset and the
// smallest precision that preserves every nanosecond of t.
func NewTimestampFromTime(t time.Time) Timestamp {
	ts := Timestamp{
		Time:        t,
		Precision:   PrecisionSecond,
		OffsetKnown: true,
	}
	nanos := t.Nanosecond()
	if nanos == 0 {
		return ts
	}
	digits := MaxFractionDigits
	for nanos%10 == 0 {
		nanos /= 10
		digits--
	}
	ts.Precision = PrecisionFraction
	ts.FractionDigits = uint8(digits)
	return ts
}

// ParseTimestamp parses the textual timestamp forms
//
//	2007T
//	2007-02T
//	2007-02-23
//	2007-02-23T12:14Z
//	2007-02-23T12:14:33.079-08:00
//
// An offset of -00:00 denotes an unknown local offset.
func ParseTimestamp(text string) (Timestamp, error) {
	var ts Timestamp
	var layout string
	switch {
	case len(text) == 5 && text[4] == 'T':
		layout, text, ts.Precision = "2006", text[:4], PrecisionYear
	case len(text) == 8 && text[7] == 'T':
		layout, text, ts.Precision = "2006-01", text[:7], PrecisionMonth
	case len(text) == 10 || (len(text) == 11 && text[10] == 'T'):
		layout, text, ts.Precision = "2006-01-02", text[:10], PrecisionDay
	}
	if layout != "" {
		t, err := time.Parse(layout, text)
		if err != nil {
			return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", text, err)
		}
		ts.Time = t
		return ts, nil
	}

	body, loc, known, err := splitOffset(text)
	if err != nil {
		return Timestamp{}, err
	}
	switch {
	case len(body) == 16:
		layout, ts.Precision = "2006-01-02T15:04", PrecisionMinute
	case len(body) == 19:
		layout, ts.Precision = "2006-01-02T15:04:05", PrecisionSecond
	case len(body) > 20 && body[19] == '.':
		digits := len(body) - 20
		if digits > MaxFractionDigits {
			return Timestamp{}, fmt.Errorf("invalid timestamp %q: more than %d fraction digits", text, MaxFractionDigits)
		}
		layout, ts.Precision, ts.FractionDigits = "2006-01-02T15:04:05", PrecisionFraction, uint8(digits)
	default:
		return Timestamp{}, fmt.Errorf("invalid timestamp %q", text)
	}
	t, err := time.ParseInLocation(layout, body, loc)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", text, err)
	}
	ts.Time = t
	ts.OffsetKnown = known
	return ts, nil
}

func splitOffset(text string) (string, *time.Location, bool, error) {
	if strings.HasSuffix(text, "Z") {
		return text[:len(text)-1], time.UTC, true, nil
	}
	if len(text) < 6 {
		return "", nil, false, fmt.Errorf("invalid timestamp %q: missing offset", text)
	}
	body, offset := text[:len(text)-6], text[len(text)-6:]
	if offset == "-00:00" {
		return body, time.UTC, false, nil
	}
	if (offset[0] != '+' && offset[0] != '-') || offset[3] != ':' {
		return "", nil, false, fmt.Errorf("invalid timestamp %q: bad offset", text)
	}
	hours, err := strconv.Atoi(offset[1:3])
	if err != nil {
		return "", nil, false, fmt.Errorf("invalid timestamp %q: %w", text, err)
	}
	minutes, err := strconv.Atoi(offset[4:6])
	if err != nil {
		return "", nil, false, fmt.Errorf("invalid timestamp %q: %w", text, err)
	}
	seconds := (hours*60 + minutes) * 60
	if offset[0] == '-' {
		seconds = -seconds
	}
	return body, time.FixedZone("", seconds), true, nil
}

// OffsetMinutes returns the local offset in minutes.
func (ts Timestamp) OffsetMinutes() int {
	_, seconds := ts.Time.Zone()
	return seconds / 60
}

// String returns the textual form accepted by ParseTimestamp.
func (ts Timestamp) String() string {
	t := ts.Time
	switch ts.Precision {
	case PrecisionYear:
		return t.Format("2006") + "T"
	case PrecisionMonth:
		return t.Format("2006-01") + "T"
	case PrecisionDay:
		return t.Format("2006-01-02")
	}
	var b strings.Builder
	b.WriteString(t.Format("2006-01-02T15:04"))
	if ts.Precision >= PrecisionSecond {
		b.WriteString(t.Format(":05"))
	}
	if ts.Precision == PrecisionFraction && ts.FractionDigits > 0 {
		b.WriteByte('.')
		b.WriteString(fmt.Sprintf("%09d", t.Nanosecond())[:ts.FractionDigits])
	}
	switch offset := ts.OffsetMinutes(); {
	case !ts.OffsetKnown:
		b.WriteString("-00:00")
	case offset == 0:
		b.WriteByte('Z')
	case offset < 0:
		fmt.Fprintf(&b, "-%02d:%02d", -offset/60, -offset%60)
	default:
		fmt.Fprintf(&b, "+%02d:%02d", offset/60, offset%60)
	}
	return b.String()
}
