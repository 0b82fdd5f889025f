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

func TestNaturalJoin(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	rs := evaluate(t, ctx, NewNaturalJoin(fetch("a"), fetch("b")))
	require.Equal([]sql.Variable{v("a.id"), v("a.x"), v("b.id"), v("b.y")}, rs.Columns)
	require.Equal(9, rs.Len())
	require.Equal(sql.Origin{{Source: "a", Index: 0}, {Source: "b", Index: 1}}, rs.Origins[1])

	rs = evaluate(t, ctx, NewNaturalJoin(fetch("a"), fetch("empty")))
	require.Equal(0, rs.Len())
}

func TestStandardJoin(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewStandardJoin(fetch("a"), fetch("b"), v("a.id"), expression.OpEquals, col("b.id"))
	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(2), int64(3)}, values(t, rs, "a.id"))
	require.Equal([]interface{}{int64(200), int64(300)}, values(t, rs, "b.y"))

	node = NewStandardJoin(
		fetch("a"), fetch("b"),
		v("a.id"), expression.OpGreaterThan,
		expression.NewMinus(col("b.id"), lit(2)),
	)
	rs = evaluate(t, ctx, node)
	require.Equal(
		[]interface{}{int64(1), int64(2), int64(2), int64(3), int64(3), int64(3)},
		values(t, rs, "a.id"),
	)
	require.Equal(
		[]interface{}{int64(2), int64(2), int64(3), int64(2), int64(3), int64(4)},
		values(t, rs, "b.id"),
	)
}

func TestExhaustiveJoin(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewExhaustiveJoin(
		fetch("a"), fetch("b"),
		expression.NewEquals(expression.NewPlus(col("a.id"), lit(1)), col("b.id")),
	)
	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(1), int64(2), int64(3)}, values(t, rs, "a.id"))
	require.Equal([]interface{}{int64(2), int64(3), int64(4)}, values(t, rs, "b.id"))
}

func TestLeftOuterJoin(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	marker := NextMarkerName()
	node := NewLeftOuterJoin(marker, NewStandardJoin(
		NewMarker(marker, fetch("a")),
		fetch("b"),
		v("a.id"), expression.OpEquals, col("b.id"),
	))

	rs := evaluate(t, ctx, node)
	require.Equal([]sql.Row{
		{int64(2), int64(20), int64(2), int64(200)},
		{int64(3), nil, int64(3), int64(300)},
		{int64(1), int64(10), nil, nil},
	}, rs.Rows)
	require.Equal(sql.Origin{{Source: "a", Index: 0}}, rs.Origins[2])
}

func TestLeftOuterJoinWithoutMatches(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	marker := NextMarkerName()
	node := NewLeftOuterJoin(marker, NewNaturalJoin(
		NewMarker(marker, fetch("a")),
		fetch("empty"),
	))

	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(1), int64(2), int64(3)}, values(t, rs, "a.id"))
	require.Equal([]interface{}{nil, nil, nil}, values(t, rs, "empty.x"))
}

func TestLeftOuterJoinMissingMarker(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	_, err := NewLeftOuterJoin("#OUTER_JOIN-0", fetch("a")).Evaluate(ctx)
	require.True(ErrMarkerNotFound.Is(err))
}

func TestMarkerNames(t *testing.T) {
	require := require.New(t)
	require.NotEqual(NextMarkerName(), NextMarkerName())
}

func TestLogicalUnion(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	join := NewNaturalJoin(fetch("a"), fetch("b"))
	left := NewExhaustive(expression.NewEquals(col("a.id"), col("b.id")), join)
	right := NewExhaustive(expression.NewEquals(col("a.id"), lit(2)), join.Clone())

	rs := evaluate(t, ctx, NewLogicalUnion(left, right))

	// (2, 2) is produced by both branches but appears only once.
	require.Equal([]interface{}{int64(2), int64(3), int64(2), int64(2)}, values(t, rs, "a.id"))
	require.Equal([]interface{}{int64(2), int64(3), int64(3), int64(4)}, values(t, rs, "b.id"))
}

func TestLogicalUnionAlignsColumns(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	left := NewNaturalJoin(fetch("a"), fetch("b"))
	right := NewNaturalJoin(fetch("b"), fetch("a"))

	rs := evaluate(t, ctx, NewLogicalUnion(left, right))
	require.Equal(9, rs.Len())
	require.Equal(v("a.id"), rs.Columns[0])

	_, err := NewLogicalUnion(fetch("a"), fetch("b")).Evaluate(ctx)
	require.True(ErrColumnMismatch.Is(err))
}
