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
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-queryplan.v0/mem"
	"gopkg.in/src-d/go-queryplan.v0/sql"
	"gopkg.in/src-d/go-queryplan.v0/sql/expression"
)

func testContext(t *testing.T) *sql.Context {
	t.Helper()

	db := mem.NewDatabase("mydb")
	addTable(t, db, "a", []string{"id", "x"}, [][]interface{}{
		{1, 10}, {2, 20}, {3, nil},
	})
	addTable(t, db, "b", []string{"id", "y"}, [][]interface{}{
		{2, 200}, {3, 300}, {4, 400},
	})
	addTable(t, db, "t", []string{"x"}, [][]interface{}{
		{5}, {50}, {500}, {2000}, {nil},
	})
	addTable(t, db, "g", []string{"k", "n"}, [][]interface{}{
		{2, 1}, {1, 5}, {2, 3}, {nil, 4}, {1, nil},
	})
	addTable(t, db, "names", []string{"s"}, [][]interface{}{
		{"alpha"}, {"beta"}, {"alpine"}, {nil},
	})
	addTable(t, db, "empty", []string{"x"}, nil)

	return sql.NewContext(
		context.TODO(),
		sql.WithCatalog(mem.NewCatalog(db)),
	)
}

func addTable(t *testing.T, db *mem.Database, name string, columns []string, rows [][]interface{}) {
	t.Helper()

	schema := make(sql.Schema, len(columns))
	for i, c := range columns {
		typ := sql.Int64
		if len(rows) > 0 {
			if _, ok := rows[0][i].(string); ok {
				typ = sql.Text
			}
		}
		schema[i] = &sql.Column{Name: c, Type: typ, Nullable: true}
	}

	table := mem.NewTable(name, schema)
	for _, r := range rows {
		require.NoError(t, table.Insert(r...))
	}
	db.AddTable(name, table)
}

func fetch(name string) *Fetch {
	n := sql.NewTableName("", name)
	return NewFetch(n, n)
}

func v(name string) sql.Variable {
	return sql.ParseVariable(name)
}

func col(name string) sql.Expression {
	return expression.NewVariable(sql.ParseVariable(name))
}

func lit(value int64) sql.Expression {
	return expression.NewLiteral(value, sql.Int64)
}

func evaluate(t *testing.T, ctx *sql.Context, n sql.Node) *sql.RowSet {
	t.Helper()
	rs, err := n.Evaluate(ctx)
	require.NoError(t, err)
	return rs
}

// values returns the values of the given column, in row order.
func values(t *testing.T, rs *sql.RowSet, column string) []interface{} {
	t.Helper()
	i := rs.IndexOf(v(column))
	require.True(t, i >= 0, "column %s not found", column)

	result := make([]interface{}, len(rs.Rows))
	for r, row := range rs.Rows {
		result[r] = row[i]
	}
	return result
}

func TestFetch(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	rs := evaluate(t, ctx, NewFetch(sql.NewTableName("mydb", "a"), sql.NewTableName("", "q")))
	require.Equal([]sql.Variable{v("q.id"), v("q.x")}, rs.Columns)
	require.Equal([]interface{}{int64(1), int64(2), int64(3)}, values(t, rs, "q.id"))
	require.Equal(sql.Origin{{Source: "q", Index: 1}}, rs.Origins[1])

	_, err := fetch("missing").Evaluate(ctx)
	require.True(sql.ErrTableNotFound.Is(err))

	_, err = fetch("a").Evaluate(sql.NewEmptyContext())
	require.True(ErrNoCatalog.Is(err))
}

func TestDiscoverTables(t *testing.T) {
	require := require.New(t)

	sub := NewSubquery(fetch("b"))
	node := NewExhaustive(
		expression.NewNot(expression.NewExists(sub)),
		NewNaturalJoin(fetch("a"), NewMembershipTest(v("a.id"), expression.OpEquals, expression.Any, fetch("b"), fetch("t"))),
	)

	require.Equal(
		[]sql.TableName{sql.NewTableName("", "a"), sql.NewTableName("", "t"), sql.NewTableName("", "b")},
		DiscoverTables(node),
	)
}

func TestDiscoverCorrelated(t *testing.T) {
	require := require.New(t)

	outer := expression.NewCorrelatedVariable(v("o.x"), 1)
	deeper := expression.NewCorrelatedVariable(v("p.x"), 2)

	inner := NewExhaustive(expression.NewEquals(col("b.id"), deeper), fetch("b"))
	node := NewExhaustive(
		expression.NewAnd(
			expression.NewEquals(col("a.id"), outer),
			expression.NewExists(NewSubquery(inner)),
		),
		fetch("a"),
	)

	level1 := DiscoverCorrelated(node, 1)
	require.Len(level1, 2)
	require.Equal(v("o.x"), level1[0].Name())
	require.Equal(v("p.x"), level1[1].Name())

	require.Empty(DiscoverCorrelated(node, 2))
	require.Len(DiscoverCorrelated(inner, 2), 1)
}

func TestCloneIsDeep(t *testing.T) {
	require := require.New(t)

	node := NewSubset(
		[]sql.Variable{v("a.id")},
		[]sql.Variable{v("a.id")},
		"",
		NewRange(v("a.id"), expression.NewComparison(expression.OpGreaterThan, col("a.id"), lit(1)), fetch("a")),
	)

	cloned := node.Clone().(*Subset)
	require.Equal(node.String(), cloned.String())

	cloned.Columns[0] = v("a.x")
	cloned.Child.(*Range).Var = v("a.x")
	require.Equal(v("a.id"), node.Columns[0])
	require.Equal(v("a.id"), node.Child.(*Range).Var)
}

// NewSubquery returns a planned sub-query expression over the given plan.
func NewSubquery(n sql.Node) *expression.Subquery {
	return expression.NewSubquery(nil).WithPlan(n)
}
