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

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValue(t *testing.T) {
	testcases := []struct {
		inType Type
		inVal  string
		outVal Value
		outErr string
	}{{
		inType: Null,
		inVal:  "",
		outVal: NULL,
	}, {
		inType: Bool,
		inVal:  "true",
		outVal: NewBool(true),
	}, {
		inType: Bool,
		inVal:  "off",
		outVal: NewBool(false),
	}, {
		inType: Int16,
		inVal:  "-12",
		outVal: NewInt16(-12),
	}, {
		inType: Int16,
		inVal:  "40000",
		outErr: "out of range",
	}, {
		inType: Int32,
		inVal:  "2147483647",
		outVal: NewInt32(2147483647),
	}, {
		inType: Int64,
		inVal:  "-9223372036854775808",
		outVal: NewInt64(-9223372036854775808),
	}, {
		inType: Oid,
		inVal:  "4294967295",
		outVal: NewOid(4294967295),
	}, {
		inType: Oid,
		inVal:  "-1",
		outErr: "invalid syntax",
	}, {
		inType: Float64,
		inVal:  "1.5",
		outVal: MakeTrusted(Float64, []byte("1.5")),
	}, {
		inType: Float64,
		inVal:  "abc",
		outErr: "invalid syntax",
	}, {
		inType: Numeric,
		inVal:  "12.50",
		outVal: MakeTrusted(Numeric, []byte("12.50")),
	}, {
		inType: Numeric,
		inVal:  "1e5",
		outErr: "invalid input syntax for type numeric",
	}, {
		inType: Char,
		inVal:  "x",
		outVal: NewChar('x'),
	}, {
		inType: Char,
		inVal:  "xy",
		outErr: "value too long",
	}, {
		inType: Date,
		inVal:  "2000-01-02",
		outVal: MakeTrusted(Date, []byte("2000-01-02")),
	}, {
		inType: Date,
		inVal:  "2000-13-02",
		outErr: "month out of range",
	}, {
		inType: UUID,
		inVal:  "6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
		outVal: MakeTrusted(UUID, []byte("6ba7b810-9dad-11d1-80b4-00c04fd430c8")),
	}, {
		inType: Text,
		inVal:  "anything",
		outVal: NewText("anything"),
	}}
	for _, tcase := range testcases {
		t.Run(tcase.inType.String()+"/"+tcase.inVal, func(t *testing.T) {
			v, err := NewValue(tcase.inType, []byte(tcase.inVal))
			if tcase.outErr != "" {
				assert.ErrorContains(t, err, tcase.outErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tcase.outVal.Equal(v), "got %v, want %v", v, tcase.outVal)
		})
	}
}

func TestIntegralConversions(t *testing.T) {
	n, err := NewInt32(-1).ToUint64()
	require.NoError(t, err)
	assert.EqualValues(t, 0xFFFFFFFF, uint32(n))

	n, err = NewOid(4000000000).ToUint64()
	require.NoError(t, err)
	assert.EqualValues(t, 4000000000, n)

	i, err := NewBool(true).ToInt64()
	require.NoError(t, err)
	assert.EqualValues(t, 1, i)

	i, err = NewChar('A').ToInt64()
	require.NoError(t, err)
	assert.EqualValues(t, 65, i)

	_, err = NewText("7").ToInt64()
	assert.ErrorContains(t, err, "not integral")
}

func TestDateDays(t *testing.T) {
	testcases := []struct {
		in   time.Time
		days int32
	}{
		{PostgresEpoch, 0},
		{PostgresEpoch.AddDate(0, 0, 1), 1},
		{PostgresEpoch.AddDate(0, 0, -1), -1},
		{time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC), -10957},
	}
	for _, tcase := range testcases {
		days, err := NewDate(tcase.in).DateDays()
		require.NoError(t, err)
		assert.Equal(t, tcase.days, days, tcase.in.String())
	}
	_, err := NewInt32(3).DateDays()
	assert.Error(t, err)
}

func TestNormalizedNumeric(t *testing.T) {
	testcases := map[string]string{
		"0":        "0",
		"-0.000":   "0",
		"+007":     "7",
		"12.5000":  "12.5",
		"-0012.10": "-12.1",
		".5":       "0.5",
		"3.":       "3",
	}
	for in, want := range testcases {
		v, err := NewNumeric(in)
		require.NoError(t, err, in)
		got, err := v.NormalizedNumeric()
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NULL", NULL.String())
	assert.Equal(t, "INT4(12)", NewInt32(12).String())
	assert.Equal(t, `TEXT("a b")`, NewText("a b").String())
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, `UUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")`, NewUUID(u).String())
}

func TestCoerce(t *testing.T) {
	testcases := []struct {
		in     Value
		typ    Type
		out    Value
		outErr string
	}{{
		in:  NULL,
		typ: Int32,
		out: NULL,
	}, {
		in:  NewText("42"),
		typ: Int32,
		out: NewInt32(42),
	}, {
		in:  NewInt64(42),
		typ: Int16,
		out: NewInt16(42),
	}, {
		in:     NewInt64(70000),
		typ:    Int16,
		outErr: "out of range",
	}, {
		in:  MakeTrusted(Numeric, []byte("5.000")),
		typ: Int32,
		out: NewInt32(5),
	}, {
		in:     MakeTrusted(Numeric, []byte("5.5")),
		typ:    Int32,
		outErr: "invalid syntax",
	}, {
		in:  NewInt32(3),
		typ: Numeric,
		out: MakeTrusted(Numeric, []byte("3")),
	}, {
		in:  NewInt16(2),
		typ: Float64,
		out: MakeTrusted(Float64, []byte("2")),
	}, {
		in:  NewText("2001-02-03"),
		typ: Date,
		out: MakeTrusted(Date, []byte("2001-02-03")),
	}, {
		in:  NewTimestamp(time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)),
		typ: Date,
		out: MakeTrusted(Date, []byte("2001-02-03")),
	}, {
		in:  NewInt32(9),
		typ: VarChar,
		out: NewVarChar("9"),
	}, {
		in:     NewBool(true),
		typ:    Int32,
		outErr: "cannot coerce BOOL to INT4",
	}}
	for _, tcase := range testcases {
		t.Run(tcase.in.String()+"->"+tcase.typ.String(), func(t *testing.T) {
			got, err := Coerce(tcase.in, tcase.typ)
			if tcase.outErr != "" {
				assert.ErrorContains(t, err, tcase.outErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tcase.out.Equal(got), "got %v, want %v", got, tcase.out)
		})
	}
}
