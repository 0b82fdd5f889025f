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
	"math"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

// ErrFunctionNotFound is thrown when a function is not found
var ErrFunctionNotFound = errors.NewKind("function not found: %s")

// ErrInvalidArgumentNumber is returned when the number of arguments to call a
// function is different from the function arity.
var ErrInvalidArgumentNumber = errors.NewKind("function %q expects %d arguments, %d received")

type scalarFunc struct {
	arity int // -1 for variadic
	fn    func(args []interface{}) (interface{}, error)
}

var functions = map[string]scalarFunc{
	"upper":    {1, stringFunc(strings.ToUpper)},
	"lower":    {1, stringFunc(strings.ToLower)},
	"length":   {1, length},
	"abs":      {1, abs},
	"concat":   {-1, concat},
	"coalesce": {-1, coalesce},
	"ifnull":   {2, coalesce},
}

// IsFunction reports whether a scalar function with the given name exists.
func IsFunction(name string) bool {
	_, ok := functions[strings.ToLower(name)]
	return ok
}

// Function is a call to a scalar function.
type Function struct {
	name string
	args []sql.Expression
	impl scalarFunc
}

// NewFunction creates a call to the scalar function with the given name.
func NewFunction(name string, args ...sql.Expression) (*Function, error) {
	name = strings.ToLower(name)
	impl, ok := functions[name]
	if !ok {
		return nil, ErrFunctionNotFound.New(name)
	}

	if impl.arity >= 0 && impl.arity != len(args) {
		return nil, ErrInvalidArgumentNumber.New(name, impl.arity, len(args))
	}

	return &Function{name, args, impl}, nil
}

// Name of the function.
func (f *Function) Name() string { return f.name }

// Eval implements the Expression interface.
func (f *Function) Eval(ctx *sql.Context, row sql.RowContext) (interface{}, error) {
	var values = make([]interface{}, len(f.args))
	for i, arg := range f.args {
		v, err := arg.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return f.impl.fn(values)
}

// Children implements the Expression interface.
func (f *Function) Children() []sql.Expression { return f.args }

// WithChildren implements the Expression interface.
func (f *Function) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(f.args) {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), len(f.args))
	}
	return &Function{f.name, children, f.impl}, nil
}

func (f *Function) String() string {
	var args = make([]string, len(f.args))
	for i, arg := range f.args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", strings.ToUpper(f.name), strings.Join(args, ", "))
}

func stringFunc(fn func(string) string) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		s, err := cast.ToStringE(args[0])
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

func length(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(args[0])
	if err != nil {
		return nil, err
	}
	return int64(len(s)), nil
}

func abs(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	if i, ok := asInt(args[0]); ok {
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	f, err := cast.ToFloat64E(args[0])
	if err != nil {
		return nil, err
	}
	return math.Abs(f), nil
}

func concat(args []interface{}) (interface{}, error) {
	var buf strings.Builder
	for _, arg := range args {
		if arg == nil {
			return nil, nil
		}
		s, err := cast.ToStringE(arg)
		if err != nil {
			return nil, err
		}
		buf.WriteString(s)
	}
	return buf.String(), nil
}

func coalesce(args []interface{}) (interface{}, error) {
	for _, arg := range args {
		if arg != nil {
			return arg, nil
		}
	}
	return nil, nil
}
