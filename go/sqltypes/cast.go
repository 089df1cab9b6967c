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
	"fmt"
	"strconv"
)

// Coerce converts v to typ the way an assignment to a column of that type
// would. NULL stays NULL. Integral conversions are range checked.
func Coerce(v Value, typ Type) (Value, error) {
	if v.IsNull() || v.typ == typ {
		return v, nil
	}
	switch {
	case typ == Numeric && (IsIntegral(v.typ) || IsFloat(v.typ)):
		if v.typ == Bool {
			break
		}
		return NewValue(Numeric, v.val)
	case IsIntegral(typ) && typ != Bool && v.typ == Numeric:
		norm, err := v.NormalizedNumeric()
		if err != nil {
			return NULL, err
		}
		return NewValue(typ, []byte(norm))
	case IsFloat(typ) && (IsIntegral(v.typ) || v.typ == Numeric):
		f, err := v.ToFloat64()
		if err != nil {
			return NULL, err
		}
		return NewValue(typ, strconv.AppendFloat(nil, f, 'g', -1, 64))
	case IsIntegral(typ) && IsIntegral(v.typ):
		if typ == Bool || v.typ == Bool {
			break
		}
		return NewValue(typ, v.val)
	case typ == Date && (v.typ == Timestamp || v.typ == TimestampTZ):
		t, err := v.ToTime()
		if err != nil {
			return NULL, err
		}
		return NewDate(t), nil
	case typ == Timestamp && v.typ == Date:
		t, err := v.ToTime()
		if err != nil {
			return NULL, err
		}
		return NewTimestamp(t), nil
	case IsText(v.typ):
		// Unknown literal text takes the input form of the target type.
		return NewValue(typ, v.val)
	case IsText(typ):
		return MakeTrusted(typ, v.val), nil
	}
	return NULL, fmt.Errorf("cannot coerce %v to %v", v.typ, typ)
}
