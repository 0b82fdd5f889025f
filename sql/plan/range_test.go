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

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

func cmp(op expression.Operator, left, right sql.Expression) sql.Expression {
	return expression.NewComparison(op, left, right)
}

func TestRange(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	expr := expression.NewOr(
		expression.NewAnd(
			cmp(expression.OpGreaterThan, col("t.x"), lit(10)),
			cmp(expression.OpLessThan, col("t.x"), lit(100)),
		),
		cmp(expression.OpGreaterThan, col("t.x"), lit(1000)),
	)

	node := NewRange(v("t.x"), expr, fetch("t"))

	set, err := node.Intervals(ctx)
	require.NoError(err)
	require.Equal("(10, 100), (1000, +∞)", set.String())

	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(50), int64(2000)}, values(t, rs, "t.x"))
}

func TestRangeReversedOperands(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	// 500 <= x is x >= 500
	node := NewRange(v("t.x"), cmp(expression.OpLessOrEqual, lit(500), col("t.x")), fetch("t"))

	set, err := node.Intervals(ctx)
	require.NoError(err)
	require.Equal("[500, +∞)", set.String())

	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(500), int64(2000)}, values(t, rs, "t.x"))
}

func TestRangeIntervals(t *testing.T) {
	testCases := []struct {
		name     string
		expr     sql.Expression
		expected string
	}{
		{
			"complement",
			expression.NewOr(
				cmp(expression.OpLessThan, col("t.x"), lit(5)),
				cmp(expression.OpGreaterOrEqual, col("t.x"), lit(5)),
			),
			"(-∞, +∞)",
		},
		{
			"disjoint",
			expression.NewAnd(
				cmp(expression.OpGreaterThan, col("t.x"), lit(5)),
				cmp(expression.OpLessOrEqual, col("t.x"), lit(5)),
			),
			"EMPTY",
		},
		{
			"equality",
			cmp(expression.OpEquals, col("t.x"), lit(7)),
			"[7, 7]",
		},
		{
			"not equals",
			cmp(expression.OpNotEquals, col("t.x"), lit(7)),
			"(-∞, 7), (7, +∞)",
		},
		{
			"overlapping",
			expression.NewOr(
				expression.NewAnd(
					cmp(expression.OpGreaterOrEqual, col("t.x"), lit(1)),
					cmp(expression.OpLessThan, col("t.x"), lit(10)),
				),
				expression.NewAnd(
					cmp(expression.OpGreaterThan, col("t.x"), lit(5)),
					cmp(expression.OpLessOrEqual, col("t.x"), lit(20)),
				),
			),
			"[1, 20]",
		},
		{
			"null bound",
			cmp(expression.OpGreaterThan, col("t.x"), expression.NewLiteral(nil, sql.Null)),
			"EMPTY",
		},
	}

	ctx := testContext(t)
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewRange(v("t.x"), tt.expr, fetch("t")).Intervals(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.expected, set.String())
		})
	}
}

func TestRangeNullNeverSelected(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewRange(
		v("t.x"),
		expression.NewOr(
			cmp(expression.OpLessThan, col("t.x"), lit(5)),
			cmp(expression.OpGreaterOrEqual, col("t.x"), lit(5)),
		),
		fetch("t"),
	)

	rs := evaluate(t, ctx, node)
	require.Equal(4, rs.Len())
}

func TestRangeInvalidExpression(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewRange(v("t.x"), cmp(expression.OpEquals, col("a.id"), lit(5)), fetch("t"))
	_, err := node.Evaluate(ctx)
	require.True(ErrInvalidRangeExpression.Is(err))

	node = NewRange(v("t.x"), cmp(expression.OpLike, col("t.x"), lit(5)), fetch("t"))
	_, err = node.Evaluate(ctx)
	require.True(ErrInvalidRangeExpression.Is(err))
}

func TestIntervalSetContains(t *testing.T) {
	require := require.New(t)

	set, err := NewIntervalSet(expression.OpGreaterThan, int64(3))
	require.NoError(err)

	for value, expected := range map[interface{}]bool{
		int64(2): false,
		int64(3): false,
		int64(4): true,
		nil:      false,
	} {
		ok, err := set.Contains(value)
		require.NoError(err)
		require.Equal(expected, ok, "value %v", value)
	}

	all := AllValues()
	ok, err := all.Contains(int64(-100))
	require.NoError(err)
	require.True(ok)
}

func TestSimpleSelect(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewSimpleSelect(v("t.x"), expression.OpIn, expression.NewTuple(lit(5), lit(2000), lit(7)), fetch("t"))
	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(5), int64(2000)}, values(t, rs, "t.x"))

	node = NewSimpleSelect(v("t.x"), expression.OpNotIn, expression.NewTuple(lit(5), lit(2000)), fetch("t"))
	rs = evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(50), int64(500)}, values(t, rs, "t.x"))

	node = NewSimpleSelect(v("t.x"), expression.OpLessThan, lit(100), fetch("t"))
	rs = evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(5), int64(50)}, values(t, rs, "t.x"))
}
