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
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-queryplan.v0/sql"
)

func TestFunctions(t *testing.T) {
	testCases := []struct {
		name     string
		args     []sql.Expression
		expected interface{}
	}{
		{"upper", []sql.Expression{lit("foo")}, "FOO"},
		{"LOWER", []sql.Expression{lit("FoO")}, "foo"},
		{"upper", []sql.Expression{lit(nil)}, nil},
		{"length", []sql.Expression{lit("four")}, int64(4)},
		{"abs", []sql.Expression{lit(int64(-3))}, int64(3)},
		{"abs", []sql.Expression{lit(float64(-1.5))}, float64(1.5)},
		{"concat", []sql.Expression{lit("a"), lit(int64(1)), lit("b")}, "a1b"},
		{"concat", []sql.Expression{lit("a"), lit(nil)}, nil},
		{"coalesce", []sql.Expression{lit(nil), lit(nil), lit(int64(2))}, int64(2)},
		{"coalesce", []sql.Expression{lit(nil)}, nil},
		{"ifnull", []sql.Expression{lit(nil), lit("x")}, "x"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			f, err := NewFunction(tt.name, tt.args...)
			require.NoError(err)

			v, err := f.Eval(sql.NewEmptyContext(), sql.EmptyRowContext)
			require.NoError(err)
			require.Equal(tt.expected, v)
		})
	}
}

func TestFunctionErrors(t *testing.T) {
	require := require.New(t)

	_, err := NewFunction("nope", lit(int64(1)))
	require.True(ErrFunctionNotFound.Is(err))

	_, err = NewFunction("upper")
	require.True(ErrInvalidArgumentNumber.Is(err))

	_, err = NewFunction("ifnull", lit(nil))
	require.True(ErrInvalidArgumentNumber.Is(err))

	require.True(IsFunction("Concat"))
	require.False(IsFunction("count"))
	require.True(IsAggregateFunction("SUM"))
}

func TestFunctionString(t *testing.T) {
	require := require.New(t)

	f, err := NewFunction("concat", NewUnresolvedColumn("a.b"), lit("x"))
	require.NoError(err)
	require.Equal(`CONCAT(a.b, "x")`, f.String())
	require.Equal("concat", f.Name())

	nf, err := f.WithChildren(lit("y"), lit("z"))
	require.NoError(err)
	v, err := nf.Eval(sql.NewEmptyContext(), sql.EmptyRowContext)
	require.NoError(err)
	require.Equal("yz", v)

	_, err = f.WithChildren(lit("y"))
	require.Error(err)
}

func TestIsNull(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	e := NewIsNull(lit(nil))
	v, err := e.Eval(ctx, sql.EmptyRowContext)
	require.NoError(err)
	require.Equal(true, v)

	e = NewIsNull(lit(int64(1)))
	v, err = e.Eval(ctx, sql.EmptyRowContext)
	require.NoError(err)
	require.Equal(false, v)

	require.Equal("1 IS NULL", e.String())
}

func TestTuple(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	single := NewTuple(lit(int64(1)))
	v, err := single.Eval(ctx, sql.EmptyRowContext)
	require.NoError(err)
	require.Equal(int64(1), v)

	tuple := NewTuple(lit(int64(1)), lit("a"), lit(nil))
	v, err = tuple.Eval(ctx, sql.EmptyRowContext)
	require.NoError(err)
	require.Equal([]interface{}{int64(1), "a", nil}, v)
	require.Equal(`(1, "a", NULL)`, tuple.String())
	require.Len(tuple.Children(), 3)

	_, err = tuple.WithChildren(lit(int64(2)))
	require.Error(err)
}
