package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TruncateString cuts a string down to the maximum allowed length.
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength]
}

// StringList is a string slice stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJson(value, l)
}

// CountMap is a name to count mapping stored as a JSON column. It backs
// every per-language and per-repository aggregate of the record.
type CountMap map[string]int64

func (m CountMap) Value() (driver.Value, error) {
	if m == nil {
		m = CountMap{}
	}
	return json.Marshal(m)
}

func (m *CountMap) Scan(value interface{}) error {
	return scanJson(value, m)
}

// TimeList is a timestamp slice stored as a JSON column.
type TimeList []time.Time

func (l TimeList) Value() (driver.Value, error) {
	if l == nil {
		l = TimeList{}
	}
	return json.Marshal(l)
}

func (l *TimeList) Scan(value interface{}) error {
	return scanJson(value, l)
}

func scanJson(value interface{}, out interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, out)
	case string:
		return json.Unmarshal([]byte(v), out)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
