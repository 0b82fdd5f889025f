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

// countingNode counts how many times its child is evaluated.
type countingNode struct {
	UnaryNode
	count int
}

func (n *countingNode) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	n.count++
	return n.Child.Evaluate(ctx)
}

func (n *countingNode) Clone() sql.Node { return n }

func (n *countingNode) String() string { return "Counting" }

func TestCachePoint(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	counter := &countingNode{UnaryNode: UnaryNode{fetch("a")}}
	cache := NewCachePoint(counter)
	node := NewLogicalUnion(
		NewExhaustive(expression.NewEquals(col("a.id"), lit(1)), cache),
		NewExhaustive(expression.NewEquals(col("a.id"), lit(3)), cache.Clone()),
	)

	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(1), int64(3)}, values(t, rs, "a.id"))
	require.Equal(1, counter.count)

	// A new context starts with an empty cache.
	evaluate(t, testContext(t), node)
	require.Equal(2, counter.count)

	require.NotEqual(cache.ID, NewCachePoint(counter).ID)
}

func TestSort(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	rs := evaluate(t, ctx, NewSort([]SortField{{v("g.k"), true}, {v("g.n"), false}}, fetch("g")))
	require.Equal([]interface{}{nil, int64(1), int64(1), int64(2), int64(2)}, values(t, rs, "g.k"))
	require.Equal([]interface{}{int64(4), int64(5), nil, int64(3), int64(1)}, values(t, rs, "g.n"))

	rs = evaluate(t, ctx, NewSort([]SortField{{v("g.k"), false}}, fetch("g")))
	require.Equal([]interface{}{int64(2), int64(2), int64(1), int64(1), nil}, values(t, rs, "g.k"))
	// Equal keys keep their input order.
	require.Equal([]interface{}{int64(1), int64(3), int64(5), nil, int64(4)}, values(t, rs, "g.n"))
}

func TestDistinct(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	rs := evaluate(t, ctx, NewDistinct([]sql.Variable{v("g.k")}, fetch("g")))
	require.Equal([]interface{}{int64(2), int64(1), nil}, values(t, rs, "g.k"))
	require.Equal([]interface{}{int64(1), int64(5), int64(4)}, values(t, rs, "g.n"))

	_, err := NewDistinct([]sql.Variable{v("g.x")}, fetch("g")).Evaluate(ctx)
	require.True(sql.ErrColumnNotFound.Is(err))
}

func TestSubset(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewSubset(
		[]sql.Variable{v("a.x"), v("a.id")},
		[]sql.Variable{v("q.x"), v("q.id")},
		"q",
		fetch("a"),
	)

	rs := evaluate(t, ctx, node)
	require.Equal([]sql.Variable{v("q.x"), v("q.id")}, rs.Columns)
	require.Equal([]sql.Row{{int64(10), int64(1)}, {int64(20), int64(2)}, {nil, int64(3)}}, rs.Rows)
	require.Equal(sql.Origin{{Source: "q", Index: 2}}, rs.Origins[2])

	node.Source = ""
	rs = evaluate(t, ctx, node)
	require.Equal(sql.Origin{{Source: "a", Index: 2}}, rs.Origins[2])
}

func TestSingleRowTable(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	node := NewCreateFunctions(
		[]sql.Expression{expression.NewPlus(lit(1), lit(2))},
		[]sql.Variable{v("FUNCTIONTABLE.0")},
		NewSingleRowTable(),
	)

	rs := evaluate(t, ctx, node)
	require.Equal([]sql.Row{{int64(3)}}, rs.Rows)
	require.Empty(DiscoverTables(node))
}

func TestExhaustive(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewExhaustive(
		expression.NewOr(
			expression.NewEquals(col("a.x"), lit(20)),
			expression.NewIsNull(col("a.x")),
		),
		fetch("a"),
	)

	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(2), int64(3)}, values(t, rs, "a.id"))
}

func TestConstantSelect(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	rs := evaluate(t, ctx, NewConstantSelect(expression.NewEquals(lit(1), lit(1)), fetch("a")))
	require.Equal(3, rs.Len())

	rs = evaluate(t, ctx, NewConstantSelect(expression.NewEquals(lit(1), lit(2)), fetch("a")))
	require.Equal(0, rs.Len())
	require.Equal([]sql.Variable{v("a.id"), v("a.x")}, rs.Columns)

	rs = evaluate(t, ctx, NewConstantSelect(expression.NewLiteral(nil, sql.Null), fetch("a")))
	require.Equal(0, rs.Len())
}

func TestSimplePattern(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	pattern := expression.NewLiteral("al%", sql.Text)

	rs := evaluate(t, ctx, NewSimplePattern(v("names.s"), expression.OpLike, pattern, fetch("names")))
	require.Equal([]interface{}{"alpha", "alpine"}, values(t, rs, "names.s"))

	rs = evaluate(t, ctx, NewSimplePattern(v("names.s"), expression.OpNotLike, pattern, fetch("names")))
	require.Equal([]interface{}{"beta"}, values(t, rs, "names.s"))
}

func TestMembershipTest(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	subplan := column("b", "id")

	rs := evaluate(t, ctx, NewMembershipTest(v("a.id"), expression.OpEquals, expression.Any, subplan, fetch("a")))
	require.Equal([]interface{}{int64(2), int64(3)}, values(t, rs, "a.id"))

	rs = evaluate(t, ctx, NewMembershipTest(v("a.id"), expression.OpLessThan, expression.All, subplan, fetch("a")))
	require.Equal([]interface{}{int64(1)}, values(t, rs, "a.id"))
}

const expectedPlan = `Subset(a.id AS id)
 └─ Range(a.id: a.id > 1)
     └─ StandardJoin(a.id = b.id)
         ├─ Marker(#OUTER_JOIN-0)
         │   └─ Fetch(a)
         └─ Fetch(s.b AS b)
`

func TestPlanString(t *testing.T) {
	require := require.New(t)

	node := NewSubset(
		[]sql.Variable{v("a.id")},
		[]sql.Variable{v("id")},
		"",
		NewRange(
			v("a.id"),
			expression.NewComparison(expression.OpGreaterThan, col("a.id"), lit(1)),
			NewStandardJoin(
				NewMarker("#OUTER_JOIN-0", fetch("a")),
				NewFetch(sql.NewTableName("s", "b"), sql.NewTableName("", "b")),
				v("a.id"), expression.OpEquals, col("b.id"),
			),
		),
	)

	require.Equal(expectedPlan, node.String())
	require.Equal(expectedPlan, node.Clone().String())
}
