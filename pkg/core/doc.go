// Package core defines the shared language of the leapdq system.
//
// This package contains:
//   - The profile data contract (ColumnProfile, BaseType, CardinalityEntry)
//   - Field values as read from a data source (Value, Row)
//   - Diagnostic severity levels
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
