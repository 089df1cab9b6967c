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

package locator

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"vitess.io/distexchange/go/sqltypes"
)

// HashFunc computes the 32 bit distribution hash of a non-null value.
type HashFunc func(v sqltypes.Value) (uint32, error)

var (
	hashMu    sync.RWMutex
	hashFuncs = map[sqltypes.Type]HashFunc{}
)

// RegisterHash makes typ hash distributable using fn, replacing any
// function registered before.
func RegisterHash(typ sqltypes.Type, fn HashFunc) {
	hashMu.Lock()
	defer hashMu.Unlock()
	hashFuncs[typ] = fn
}

func hashFuncFor(typ sqltypes.Type) HashFunc {
	hashMu.RLock()
	defer hashMu.RUnlock()
	return hashFuncs[typ]
}

// IsTypeHashDistributable reports whether a hash function is registered
// for typ.
func IsTypeHashDistributable(typ sqltypes.Type) bool {
	return hashFuncFor(typ) != nil
}

// HashValue returns the distribution hash of v.
func HashValue(v sqltypes.Value) (uint32, error) {
	fn := hashFuncFor(v.Type())
	if fn == nil {
		return 0, fmt.Errorf("no hash function for type %v", v.Type())
	}
	return fn(v)
}

// fold32 reduces a 64 bit hash to 32 bits, keeping entropy from both halves.
func fold32(h uint64) uint32 {
	return uint32(h) ^ uint32(h>>32)
}

func hashBytes(b []byte) uint32 {
	return fold32(xxhash.Sum64(b))
}

func hashUint64(n uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	return hashBytes(buf[:])
}

// hashIntegral hashes every integral type, and dates, by numeric value,
// so equal numbers of different widths land on the same node.
func hashIntegral(v sqltypes.Value) (uint32, error) {
	n, err := v.ToUint64()
	if err != nil {
		return 0, err
	}
	return hashUint64(n), nil
}

func hashRaw(v sqltypes.Value) (uint32, error) {
	return hashBytes(v.Raw()), nil
}

// hashBpChar ignores trailing blanks, which are not significant for
// blank padded strings.
func hashBpChar(v sqltypes.Value) (uint32, error) {
	return hashBytes(bytes.TrimRight(v.Raw(), " ")), nil
}

// hashNumeric hashes the canonical text, so 1.50 and 1.5 agree.
func hashNumeric(v sqltypes.Value) (uint32, error) {
	s, err := v.NormalizedNumeric()
	if err != nil {
		return 0, err
	}
	return hashBytes([]byte(s)), nil
}

func hashUUID(v sqltypes.Value) (uint32, error) {
	u, err := uuid.ParseBytes(v.Raw())
	if err != nil {
		return 0, err
	}
	return hashBytes(u[:]), nil
}

// hashTemporal hashes the instant in microseconds. Time of day values
// are parsed onto the zero date.
func hashTemporal(v sqltypes.Value) (uint32, error) {
	t, err := v.ToTime()
	if err != nil {
		return 0, err
	}
	return hashUint64(uint64(t.UnixMicro())), nil
}

func init() {
	for _, typ := range []sqltypes.Type{sqltypes.Bool, sqltypes.Char, sqltypes.Int16, sqltypes.Int32, sqltypes.Int64, sqltypes.Oid, sqltypes.Date} {
		RegisterHash(typ, hashIntegral)
	}
	for _, typ := range []sqltypes.Type{sqltypes.Text, sqltypes.VarChar, sqltypes.Name, sqltypes.Bytea} {
		RegisterHash(typ, hashRaw)
	}
	RegisterHash(sqltypes.BpChar, hashBpChar)
	RegisterHash(sqltypes.Numeric, hashNumeric)
	RegisterHash(sqltypes.UUID, hashUUID)
	for _, typ := range []sqltypes.Type{sqltypes.Time, sqltypes.Timestamp, sqltypes.TimestampTZ} {
		RegisterHash(typ, hashTemporal)
	}
}
