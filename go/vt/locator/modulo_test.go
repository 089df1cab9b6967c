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
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuloSpecialCases(t *testing.T) {
	testcases := []struct {
		num, den, want uint32
	}{
		{0, 7, 0},
		{0, 1, 0},
		{5, 1, 0},
		{13, 8, 5},
		{13, 7, 6},
		{14, 7, 0},
		{math.MaxUint32, 4, 3},
		{math.MaxUint32, 3, 0},
		{math.MaxUint32, 5, 0},
		{math.MaxUint32, math.MaxUint32, 0},
		{math.MaxUint32 - 1, math.MaxUint32, math.MaxUint32 - 1},
		{100, 6, 4},
	}
	for _, tcase := range testcases {
		assert.Equal(t, tcase.want, Modulo(tcase.num, tcase.den), "%d %% %d", tcase.num, tcase.den)
	}
}

func TestModuloMatchesRemainder(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	edge := []uint32{1, 2, 3, math.MaxInt32, math.MaxInt32 + 1, math.MaxUint32 - 1, math.MaxUint32}

	check := func(num, den uint32) bool {
		if got, want := Modulo(num, den), num%den; got != want {
			t.Errorf("Modulo(%d, %d) = %d, want %d", num, den, got, want)
			return false
		}
		return true
	}

	// Denominators of the form (1 << s) - 1 take the folding path.
	for s := 2; s < 32; s++ {
		den := uint32(1)<<s - 1
		for _, num := range edge {
			check(num, den)
			check(den-1, den)
			check(den, den)
			check(den+1, den)
		}
		for i := 0; i < 20000; i++ {
			if !check(r.Uint32(), den) {
				break
			}
		}
	}

	for den := uint32(1); den <= 1<<20; den++ {
		for i := 0; i < 4; i++ {
			if !check(r.Uint32(), den) {
				return
			}
		}
		check(math.MaxUint32, den)
	}
}

func BenchmarkModulo(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Modulo(uint32(i)*2654435761, 7)
	}
}
