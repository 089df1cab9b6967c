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

package sqltypes

import "strings"

// These bit flags can be used to query on the
// common properties of types.
const (
	flagIsIntegral = 256
	flagIsFloat    = 512
	flagIsQuoted   = 1024
	flagIsText     = 2048
	flagIsBinary   = 4096
)

// Type defines the column types a routing value can carry.
// The lower byte is an ordinal, the upper bits are the flags above.
type Type int32

// Type values.
const (
	Null        Type = 0
	Bool        Type = 1 | flagIsIntegral
	Char        Type = 2 | flagIsQuoted | flagIsText
	Int16       Type = 3 | flagIsIntegral
	Int32       Type = 4 | flagIsIntegral
	Int64       Type = 5 | flagIsIntegral
	Oid         Type = 6 | flagIsIntegral
	Float32     Type = 7 | flagIsFloat
	Float64     Type = 8 | flagIsFloat
	Numeric     Type = 9
	Date        Type = 10 | flagIsQuoted
	Time        Type = 11 | flagIsQuoted
	Timestamp   Type = 12 | flagIsQuoted
	TimestampTZ Type = 13 | flagIsQuoted
	Text        Type = 14 | flagIsQuoted | flagIsText
	VarChar     Type = 15 | flagIsQuoted | flagIsText
	BpChar      Type = 16 | flagIsQuoted | flagIsText
	Name        Type = 17 | flagIsQuoted | flagIsText
	Bytea       Type = 18 | flagIsQuoted | flagIsBinary
	UUID        Type = 19 | flagIsQuoted
	JSON        Type = 20 | flagIsQuoted
)

var typeNames = map[Type]string{
	Null:        "NULL",
	Bool:        "BOOL",
	Char:        "CHAR",
	Int16:       "INT2",
	Int32:       "INT4",
	Int64:       "INT8",
	Oid:         "OID",
	Float32:     "FLOAT4",
	Float64:     "FLOAT8",
	Numeric:     "NUMERIC",
	Date:        "DATE",
	Time:        "TIME",
	Timestamp:   "TIMESTAMP",
	TimestampTZ: "TIMESTAMPTZ",
	Text:        "TEXT",
	VarChar:     "VARCHAR",
	BpChar:      "BPCHAR",
	Name:        "NAME",
	Bytea:       "BYTEA",
	UUID:        "UUID",
	JSON:        "JSON",
}

var namesToType map[string]Type

func init() {
	namesToType = make(map[string]Type, len(typeNames))
	for typ, name := range typeNames {
		namesToType[name] = typ
	}
	// Common SQL spellings.
	namesToType["BOOLEAN"] = Bool
	namesToType["SMALLINT"] = Int16
	namesToType["INT"] = Int32
	namesToType["INTEGER"] = Int32
	namesToType["BIGINT"] = Int64
	namesToType["REAL"] = Float32
	namesToType["DOUBLE"] = Float64
	namesToType["DECIMAL"] = Numeric
}

// String returns the catalog name of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// TypeFromName returns the type for a catalog or SQL type name.
func TypeFromName(name string) (Type, bool) {
	typ, ok := namesToType[strings.ToUpper(strings.TrimSpace(name))]
	return typ, ok
}

// IsIntegral returns true if Type is an integral
// (signed/unsigned) that can be represented using
// up to 64 binary bits.
func IsIntegral(t Type) bool {
	return int(t)&flagIsIntegral == flagIsIntegral
}

// IsFloat returns true is Type is a floating point.
func IsFloat(t Type) bool {
	return int(t)&flagIsFloat == flagIsFloat
}

// IsQuoted returns true if Type is a quoted text or binary.
func IsQuoted(t Type) bool {
	return int(t)&flagIsQuoted == flagIsQuoted
}

// IsText returns true if Type is a text.
func IsText(t Type) bool {
	return int(t)&flagIsText == flagIsText
}

// IsBinary returns true if Type is a binary.
func IsBinary(t Type) bool {
	return int(t)&flagIsBinary == flagIsBinary
}

// FixedWidth returns the storage width in bytes of fixed width types,
// or -1 for variable width types.
func FixedWidth(t Type) int {
	switch t {
	case Bool, Char:
		return 1
	case Int16:
		return 2
	case Int32, Oid, Date, Float32:
		return 4
	case Int64, Float64, Time, Timestamp, TimestampTZ:
		return 8
	case UUID:
		return 16
	}
	return -1
}
