package core

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// Base Types
// =============================================================================

// BaseType is the primitive type a profiler assigned to a column.
// The set is closed; anything the profiler reports outside it becomes TypeUnknown.
type BaseType int

// Base types reported by the profiler.
const (
	TypeUnknown BaseType = iota
	TypeBoolean
	TypeString
	TypeLong
	TypeDouble
	TypeLocalDate
	TypeLocalDateTime
	TypeLocalTime
	TypeOffsetDateTime
	TypeZonedDateTime
)

var baseTypeNames = map[BaseType]string{
	TypeUnknown:        "Unknown",
	TypeBoolean:        "Boolean",
	TypeString:         "String",
	TypeLong:           "Long",
	TypeDouble:         "Double",
	TypeLocalDate:      "LocalDate",
	TypeLocalDateTime:  "LocalDateTime",
	TypeLocalTime:      "LocalTime",
	TypeOffsetDateTime: "OffsetDateTime",
	TypeZonedDateTime:  "ZonedDateTime",
}

// String returns the display name of the type, e.g. "Long" or "LocalDate".
// This is the form used as the BaseType rule argument.
func (t BaseType) String() string {
	if name, ok := baseTypeNames[t]; ok {
		return name
	}
	return baseTypeNames[TypeUnknown]
}

// ParseBaseType converts a type name to a BaseType, ignoring case.
// "LONG", "long" and "Long" all map to TypeLong. Unrecognized names map to
// TypeUnknown and false.
func ParseBaseType(s string) (BaseType, bool) {
	s = strings.TrimSpace(s)
	for t, name := range baseTypeNames {
		if t != TypeUnknown && strings.EqualFold(name, s) {
			return t, true
		}
	}
	return TypeUnknown, false
}

// IsNumeric reports whether values of this type compare numerically.
func (t BaseType) IsNumeric() bool {
	return t == TypeLong || t == TypeDouble
}

// IsTemporal reports whether the type is one of the date/time kinds.
func (t BaseType) IsTemporal() bool {
	switch t {
	case TypeLocalDate, TypeLocalDateTime, TypeLocalTime, TypeOffsetDateTime, TypeZonedDateTime:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the type as its display name.
func (t BaseType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a type name in any case.
func (t *BaseType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t, _ = ParseBaseType(s)
	return nil
}

// MarshalText implements encoding.TextMarshaler so YAML and koanf see the name.
func (t BaseType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *BaseType) UnmarshalText(b []byte) error {
	*t, _ = ParseBaseType(string(b))
	return nil
}
