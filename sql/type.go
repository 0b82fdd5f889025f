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

// Type is the data type of a column.
type Type int

const (
	// Null is the type of the NULL literal.
	Null Type = iota
	// Int64 is a 64 bit signed integer.
	Int64
	// Float64 is a 64 bit float.
	Float64
	// Text is a string.
	Text
	// Boolean is a true/false value.
	Boolean
)

func (t Type) String() string {
	switch t {
	case Null:
		return "NULL"
	case Int64:
		return "INT64"
	case Float64:
		return "FLOAT64"
	case Text:
		return "TEXT"
	case Boolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// ParseType returns the type with the given name.
func ParseType(name string) (Type, error) {
	switch strings.ToUpper(name) {
	case "INT", "INT64", "INTEGER", "BIGINT":
		return Int64, nil
	case "FLOAT", "FLOAT64", "DOUBLE", "REAL":
		return Float64, nil
	case "TEXT", "STRING", "VARCHAR":
		return Text, nil
	case "BOOL", "BOOLEAN":
		return Boolean, nil
	case "NULL":
		return Null, nil
	default:
		return Null, ErrInvalidType.New(name)
	}
}

// Convert converts the given value to a value of this type.
func (t Type) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch t {
	case Int64:
		return cast.ToInt64E(v)
	case Float64:
		return cast.ToFloat64E(v)
	case Text:
		return cast.ToStringE(v)
	case Boolean:
		return cast.ToBoolE(v)
	default:
		return nil, nil
	}
}
