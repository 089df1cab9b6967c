/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package sqltypes implements the typed values that flow through the
// routing and exchange layers.
package sqltypes

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Layouts used for the textual representation of temporal values.
const (
	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04:05.999999"
	TimestampLayout   = "2006-01-02 15:04:05.999999"
	TimestampTZLayout = time.RFC3339Nano
)

// PostgresEpoch is the origin used for the raw integer representation of dates.
var PostgresEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// NULL represents the NULL value.
var NULL = Value{}

// Row is a single tuple of values.
type Row []Value

// Value can store any SQL value. If the value represents
// an integral type, the bytes are always stored as a canonical
// representation that matches how the value is parsed.
type Value struct {
	typ Type
	val []byte
}

// NewValue builds a Value using typ and val. If the value and typ
// don't match, it returns an error.
func NewValue(typ Type, val []byte) (v Value, err error) {
	switch {
	case typ == Null:
		return NULL, nil
	case typ == Bool:
		b, err := parseBool(string(val))
		if err != nil {
			return NULL, err
		}
		return NewBool(b), nil
	case typ == Oid:
		n, err := strconv.ParseUint(string(val), 10, 32)
		if err != nil {
			return NULL, err
		}
		return NewOid(uint32(n)), nil
	case IsIntegral(typ):
		bits := 64
		switch typ {
		case Int16:
			bits = 16
		case Int32:
			bits = 32
		}
		n, err := strconv.ParseInt(string(val), 10, bits)
		if err != nil {
			return NULL, err
		}
		return MakeTrusted(typ, strconv.AppendInt(nil, n, 10)), nil
	case IsFloat(typ):
		bits := 64
		if typ == Float32 {
			bits = 32
		}
		if _, err := strconv.ParseFloat(string(val), bits); err != nil {
			return NULL, err
		}
		return MakeTrusted(typ, val), nil
	case typ == Numeric:
		if _, ok := parseNumeric(string(val)); !ok {
			return NULL, fmt.Errorf("invalid input syntax for type numeric: %q", val)
		}
		return MakeTrusted(typ, val), nil
	case typ == Char:
		if len(val) != 1 {
			return NULL, fmt.Errorf("value too long for type char: %q", val)
		}
		return MakeTrusted(typ, val), nil
	case typ == Date, typ == Time, typ == Timestamp, typ == TimestampTZ:
		if _, err := parseTemporal(typ, string(val)); err != nil {
			return NULL, err
		}
		return MakeTrusted(typ, val), nil
	case typ == UUID:
		u, err := uuid.ParseBytes(val)
		if err != nil {
			return NULL, err
		}
		return NewUUID(u), nil
	}
	// All other types are unchecked.
	return MakeTrusted(typ, val), nil
}

// MakeTrusted makes a new Value based on the type.
// This function should only be used if you know the value
// and type conform to the rules. Text values can always be
// built this way.
func MakeTrusted(typ Type, val []byte) Value {
	if typ == Null {
		return NULL
	}
	return Value{typ: typ, val: val}
}

// NewBool builds a Bool Value.
func NewBool(b bool) Value {
	if b {
		return MakeTrusted(Bool, []byte("t"))
	}
	return MakeTrusted(Bool, []byte("f"))
}

// NewChar builds a single byte Char Value.
func NewChar(c byte) Value {
	return MakeTrusted(Char, []byte{c})
}

// NewInt16 builds an Int16 Value.
func NewInt16(v int16) Value {
	return MakeTrusted(Int16, strconv.AppendInt(nil, int64(v), 10))
}

// NewInt32 builds an Int32 Value.
func NewInt32(v int32) Value {
	return MakeTrusted(Int32, strconv.AppendInt(nil, int64(v), 10))
}

// NewInt64 builds an Int64 Value.
func NewInt64(v int64) Value {
	return MakeTrusted(Int64, strconv.AppendInt(nil, v, 10))
}

// NewOid builds an Oid Value.
func NewOid(v uint32) Value {
	return MakeTrusted(Oid, strconv.AppendUint(nil, uint64(v), 10))
}

// NewFloat64 builds a Float64 Value.
func NewFloat64(v float64) Value {
	return MakeTrusted(Float64, strconv.AppendFloat(nil, v, 'g', -1, 64))
}

// NewNumeric builds a Numeric value from its decimal representation.
func NewNumeric(v string) (Value, error) {
	return NewValue(Numeric, []byte(v))
}

// NewDate builds a Date Value.
func NewDate(t time.Time) Value {
	return MakeTrusted(Date, []byte(t.UTC().Format(DateLayout)))
}

// NewTime builds a Time Value.
func NewTime(t time.Time) Value {
	return MakeTrusted(Time, []byte(t.Format(TimeLayout)))
}

// NewTimestamp builds a Timestamp Value.
func NewTimestamp(t time.Time) Value {
	return MakeTrusted(Timestamp, []byte(t.UTC().Format(TimestampLayout)))
}

// NewTimestampTZ builds a TimestampTZ Value.
func NewTimestampTZ(t time.Time) Value {
	return MakeTrusted(TimestampTZ, []byte(t.Format(TimestampTZLayout)))
}

// NewText builds a Text Value.
func NewText(v string) Value {
	return MakeTrusted(Text, []byte(v))
}

// NewVarChar builds a VarChar Value.
func NewVarChar(v string) Value {
	return MakeTrusted(VarChar, []byte(v))
}

// NewBpChar builds a blank padded character Value.
func NewBpChar(v string) Value {
	return MakeTrusted(BpChar, []byte(v))
}

// NewName builds a Name Value.
func NewName(v string) Value {
	return MakeTrusted(Name, []byte(v))
}

// NewBytea builds a Bytea Value.
func NewBytea(v []byte) Value {
	return MakeTrusted(Bytea, v)
}

// NewUUID builds a UUID Value in canonical form.
func NewUUID(u uuid.UUID) Value {
	return MakeTrusted(UUID, []byte(u.String()))
}

// Type returns the type of Value.
func (v Value) Type() Type {
	return v.typ
}

// Raw returns the internal representation of the value.
func (v Value) Raw() []byte {
	return v.val
}

// ToBytes returns the textual representation of the value as []byte.
func (v Value) ToBytes() []byte {
	return v.val
}

// Len returns the length.
func (v Value) Len() int {
	return len(v.val)
}

// ToString returns the textual representation of the value.
func (v Value) ToString() string {
	return string(v.val)
}

// String returns a printable version of the value.
func (v Value) String() string {
	if v.typ == Null {
		return "NULL"
	}
	if IsQuoted(v.typ) {
		return fmt.Sprintf("%v(%q)", v.typ, v.val)
	}
	return fmt.Sprintf("%v(%s)", v.typ, v.val)
}

// IsNull returns true if Value is null.
func (v Value) IsNull() bool {
	return v.typ == Null
}

// IsIntegral returns true if Value is an integral.
func (v Value) IsIntegral() bool {
	return IsIntegral(v.typ)
}

// Equal compares this Value to other. It ignores any flags.
func (v Value) Equal(other Value) bool {
	return v.typ == other.typ && bytes.Equal(v.val, other.val)
}

// ToInt64 returns the value as an int64. Bool values map to 0 and 1,
// Char values to their byte.
func (v Value) ToInt64() (int64, error) {
	switch {
	case v.typ == Bool:
		b, err := parseBool(string(v.val))
		if err != nil {
			return 0, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case v.typ == Char:
		if len(v.val) == 0 {
			return 0, nil
		}
		return int64(v.val[0]), nil
	case v.typ == Date:
		days, err := v.DateDays()
		return int64(days), err
	case IsIntegral(v.typ):
		return strconv.ParseInt(string(v.val), 10, 64)
	}
	return 0, fmt.Errorf("value is not integral: %v", v)
}

// ToUint64 returns the value as an uint64, reinterpreting negative
// integers as two's complement.
func (v Value) ToUint64() (uint64, error) {
	if v.typ == Oid {
		return strconv.ParseUint(string(v.val), 10, 64)
	}
	n, err := v.ToInt64()
	return uint64(n), err
}

// ToFloat64 returns the value as a float64.
func (v Value) ToFloat64() (float64, error) {
	if IsIntegral(v.typ) {
		n, err := v.ToInt64()
		return float64(n), err
	}
	return strconv.ParseFloat(string(v.val), 64)
}

// ToTime parses a temporal value.
func (v Value) ToTime() (time.Time, error) {
	return parseTemporal(v.typ, string(v.val))
}

// DateDays returns the number of days between PostgresEpoch and a Date value.
func (v Value) DateDays() (int32, error) {
	if v.typ != Date {
		return 0, fmt.Errorf("value is not a date: %v", v)
	}
	t, err := parseTemporal(Date, string(v.val))
	if err != nil {
		return 0, err
	}
	secs := t.Unix() - PostgresEpoch.Unix()
	days := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		days--
	}
	return int32(days), nil
}

// NormalizedNumeric returns the canonical decimal representation of a
// Numeric value: no sign on zero, no leading zeros, no trailing
// fractional zeros.
func (v Value) NormalizedNumeric() (string, error) {
	n, ok := parseNumeric(string(v.val))
	if !ok {
		return "", fmt.Errorf("invalid input syntax for type numeric: %q", v.val)
	}
	return n, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "y", "yes", "on", "1":
		return true, nil
	case "f", "false", "n", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid input syntax for type boolean: %q", s)
}

func parseTemporal(typ Type, s string) (time.Time, error) {
	switch typ {
	case Date:
		return time.Parse(DateLayout, s)
	case Time:
		return time.Parse(TimeLayout, s)
	case Timestamp:
		return time.Parse(TimestampLayout, s)
	case TimestampTZ:
		return time.Parse(TimestampTZLayout, s)
	}
	return time.Time{}, fmt.Errorf("value of type %v is not temporal", typ)
}

func parseNumeric(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return "", false
	}
	for _, part := range []string{intPart, fracPart} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return "", false
			}
		}
	}
	if hasDot {
		fracPart = strings.TrimRight(fracPart, "0")
	}
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out, true
}
