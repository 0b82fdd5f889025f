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

package expression

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// ErrNotGrouped is returned when an aggregate is evaluated against a single
// row instead of a group of rows.
var ErrNotGrouped = errors.NewKind("aggregate %s evaluated outside of a group")

var aggregates = map[string]struct{}{
	"count": {},
	"sum":   {},
	"avg":   {},
	"min":   {},
	"max":   {},
}

// IsAggregateFunction reports whether name is an aggregate function.
func IsAggregateFunction(name string) bool {
	_, ok := aggregates[strings.ToLower(name)]
	return ok
}

// Aggregate is an aggregate function call. It is evaluated against every
// row of the group its row context belongs to.
type Aggregate struct {
	name     string
	arg      sql.Expression
	distinct bool
}

// NewAggregate creates an aggregate call. A nil argument stands for "*"
// and is only valid for COUNT.
func NewAggregate(name string, distinct bool, arg sql.Expression) (*Aggregate, error) {
	name = strings.ToLower(name)
	if !IsAggregateFunction(name) {
		return nil, ErrFunctionNotFound.New(name)
	}

	if arg == nil && name != "count" {
		return nil, ErrInvalidArgumentNumber.New(name, 1, 0)
	}

	return &Aggregate{name, arg, distinct}, nil
}

// NewCountStar creates a COUNT(*) aggregate.
func NewCountStar() *Aggregate {
	return &Aggregate{name: "count"}
}

// Name of the aggregate function.
func (a *Aggregate) Name() string { return a.name }

// Children implements the Expression interface.
func (a *Aggregate) Children() []sql.Expression {
	if a.arg == nil {
		return nil
	}
	return []sql.Expression{a.arg}
}

// WithChildren implements the Expression interface.
func (a *Aggregate) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	expected := len(a.Children())
	if len(children) != expected {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), expected)
	}

	na := *a
	if expected == 1 {
		na.arg = children[0]
	}
	return &na, nil
}

func (a *Aggregate) String() string {
	arg := "*"
	if a.arg != nil {
		arg = a.arg.String()
	}
	if a.distinct {
		arg = "DISTINCT " + arg
	}
	return fmt.Sprintf("%s(%s)", strings.ToUpper(a.name), arg)
}

// Eval implements the Expression interface.
func (a *Aggregate) Eval(ctx *sql.Context, row sql.RowContext) (interface{}, error) {
	group, ok := row.(sql.GroupContext)
	if !ok {
		return nil, ErrNotGrouped.New(a)
	}

	rows := group.Group()
	if a.arg == nil {
		return int64(len(rows)), nil
	}

	var values []interface{}
	seen := make(map[uint64]struct{})
	for _, r := range rows {
		v, err := a.arg.Eval(ctx, r)
		if err != nil {
			return nil, err
		}

		if v == nil {
			continue
		}

		if a.distinct {
			h, err := sql.HashRow(v)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
		}

		values = append(values, v)
	}

	switch a.name {
	case "count":
		return int64(len(values)), nil
	case "sum":
		return sum(values)
	case "avg":
		if len(values) == 0 {
			return nil, nil
		}
		total, err := sum(values)
		if err != nil {
			return nil, err
		}
		f, err := cast.ToFloat64E(total)
		if err != nil {
			return nil, err
		}
		return f / float64(len(values)), nil
	case "min", "max":
		var result interface{}
		for _, v := range values {
			if result == nil {
				result = v
				continue
			}
			cmp, err := sql.Compare(v, result)
			if err != nil {
				return nil, err
			}
			if (a.name == "min" && cmp < 0) || (a.name == "max" && cmp > 0) {
				result = v
			}
		}
		return result, nil
	default:
		return nil, ErrFunctionNotFound.New(a.name)
	}
}

func sum(values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}

	var isum int64
	var fsum float64
	allInts := true
	for _, v := range values {
		if i, ok := asInt(v); ok && allInts {
			isum += i
			continue
		}

		if allInts {
			fsum = float64(isum)
			allInts = false
		}

		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		fsum += f
	}

	if allInts {
		return isum, nil
	}
	return fsum, nil
}
