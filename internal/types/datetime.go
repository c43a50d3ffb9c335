package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WallClockLayout is how dates leave the API: UTC wall-clock time without a
// zone suffix, so browsers show the time that was entered.
const WallClockLayout = "2006-01-02T15:04:05"

// Zone-less layouts are read as UTC; browsers send "2006-01-02T15:04:05"
// from date and time inputs.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateTime is a timestamp that accepts RFC 3339 as well as zone-less input.
type DateTime struct {
	time.Time
}

func ParseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	t, err := ParseDateTime(raw)
	if err != nil {
		return err
	}

	d.Time = t
	return nil
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.UTC().Format(WallClockLayout))
}
