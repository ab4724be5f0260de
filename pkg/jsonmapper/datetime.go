package jsonmapper

import (
	"fmt"
	"reflect"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// DateTimeLayout is the ISO local date-time form (no zone offset).
const DateTimeLayout = "2006-01-02T15:04:05"

// dateTimeOutputLayout keeps fractional seconds only when they are non-zero.
const dateTimeOutputLayout = "2006-01-02T15:04:05.999999999"

// DateTimeModuleName is the name the application registers its date-time module under.
const DateTimeModuleName = "Jackson MODULE"

// FormatDateTime renders the wall clock of t without a zone.
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeOutputLayout)
}

// ParseDateTime parses a local date-time in loc. Fractional seconds are accepted.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, s, loc)
}

// DateTimeStringSerializer writes time.Time values as local date-time strings.
type DateTimeStringSerializer struct{}

func (DateTimeStringSerializer) Serialize(value interface{}, stream *jsoniter.Stream) error {
	t, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("date-time serializer: unexpected %T", value)
	}
	stream.WriteString(FormatDateTime(t))
	return nil
}

// DateTimeStringDeserializer reads local date-time strings into time.Time.
type DateTimeStringDeserializer struct {
	Location *time.Location
}

func (d DateTimeStringDeserializer) Deserialize(iter *jsoniter.Iterator) (interface{}, error) {
	if iter.WhatIsNext() != jsoniter.StringValue {
		return nil, fmt.Errorf("date-time must be a string")
	}
	s := iter.ReadString()

	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	t, err := ParseDateTime(s, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date-time %q: %w", s, err)
	}
	return t, nil
}

// NewDateTimeModule builds the module mapping time.Time to local date-time strings.
func NewDateTimeModule(loc *time.Location) *Module {
	timeType := reflect.TypeOf(time.Time{})
	return NewModule(DateTimeModuleName).
		AddSerializer(timeType, DateTimeStringSerializer{}).
		AddDeserializer(timeType, DateTimeStringDeserializer{Location: loc})
}
