// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"strings"

	"github.com/spf13/cast"
)

// Compare compares two non-NULL values. Numbers are compared numerically,
// strings that look like numbers are compared as numbers against numbers,
// and anything else is compared as text.
func Compare(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		return 0, ErrIncomparable.New(a, a, b, b)
	}

	if ab, ok := a.(bool); ok {
		a = boolToInt(ab)
	}
	if bb, ok := b.(bool); ok {
		b = boolToInt(bb)
	}

	ai, aInt := a.(int64)
	bi, bInt := b.(int64)
	if aInt && bInt {
		return compareInt(ai, bi), nil
	}

	if IsNumber(a) || IsNumber(b) {
		af, errA := cast.ToFloat64E(a)
		bf, errB := cast.ToFloat64E(b)
		if errA == nil && errB == nil {
			return compareFloat(af, bf), nil
		}
	}

	as, err := cast.ToStringE(a)
	if err != nil {
		return 0, ErrIncomparable.New(a, a, b, b)
	}
	bs, err := cast.ToStringE(b)
	if err != nil {
		return 0, ErrIncomparable.New(a, a, b, b)
	}

	return strings.Compare(as, bs), nil
}

// IsNumber checks whether the value is of a numeric Go type.
func IsNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// IsTrue reports whether the result of evaluating a condition selects a
// row. NULL and false do not.
func IsTrue(v interface{}) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return false
		}
		return f != 0
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
