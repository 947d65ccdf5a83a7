package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// dateLayout is the calendar-date form accepted next to RFC3339
const dateLayout = "2006-01-02"

// Date accepts either 2006-01-02 or an RFC3339 timestamp
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// UnmarshalParam implements gin's binding.BindUnmarshaler for query strings
func (d *Date) UnmarshalParam(param string) error {
	t, err := parseDate(param)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Ptr returns nil for an unset date
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}
