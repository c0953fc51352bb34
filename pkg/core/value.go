package core

import "strings"

// Value is a raw field value that may be null.
// It mirrors sql.NullString so row sources can scan straight into it.
type Value struct {
	String string
	Valid  bool // Valid is true if String is not null
}

// Null returns a null value.
func Null() Value {
	return Value{}
}

// Text returns a non-null value.
func Text(s string) Value {
	return Value{String: s, Valid: true}
}

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool {
	return !v.Valid
}

// IsBlank reports whether the value is present but empty or all whitespace.
func (v Value) IsBlank() bool {
	return v.Valid && strings.TrimSpace(v.String) == ""
}

// Row is one record of field values in header order.
type Row []Value
