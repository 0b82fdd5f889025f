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

func aggregate(t *testing.T, name string, arg sql.Expression) sql.Expression {
	t.Helper()
	agg, err := expression.NewAggregate(name, false, arg)
	require.NoError(t, err)
	return agg
}

func TestGroup(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewGroup(
		[]sql.Variable{v("g.k")},
		[]sql.Expression{
			expression.NewCountStar(),
			aggregate(t, "sum", col("g.n")),
		},
		[]sql.Variable{v("FUNCTIONTABLE.0_A"), v("FUNCTIONTABLE.1_A")},
		fetch("g"),
	)

	rs := evaluate(t, ctx, node)
	require.Equal(
		[]sql.Variable{v("g.k"), v("g.n"), v("FUNCTIONTABLE.0_A"), v("FUNCTIONTABLE.1_A")},
		rs.Columns,
	)

	// NULL keys form their own group, sorted first.
	require.Equal([]interface{}{nil, int64(1), int64(2)}, values(t, rs, "g.k"))
	require.Equal([]interface{}{int64(1), int64(2), int64(2)}, values(t, rs, "FUNCTIONTABLE.0_A"))
	require.Equal([]interface{}{int64(4), int64(5), int64(4)}, values(t, rs, "FUNCTIONTABLE.1_A"))
	require.Equal(sql.Origin{{Source: GroupSource, Index: 2}}, rs.Origins[2])
}

func TestGroupWholeTable(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	names := []sql.Variable{v("FUNCTIONTABLE.0_A")}
	functions := []sql.Expression{expression.NewCountStar()}

	rs := evaluate(t, ctx, NewGroup(nil, functions, names, fetch("g")))
	require.Equal([]interface{}{int64(5)}, values(t, rs, "FUNCTIONTABLE.0_A"))

	rs = evaluate(t, ctx, NewGroup(nil, functions, names, fetch("empty")))
	require.Equal([]sql.Row{{nil, int64(0)}}, rs.Rows)

	rs = evaluate(t, ctx, NewGroup([]sql.Variable{v("empty.x")}, functions, names, fetch("empty")))
	require.Equal(0, rs.Len())
}

func TestGroupUnknownKey(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	_, err := NewGroup([]sql.Variable{v("g.missing")}, nil, nil, fetch("g")).Evaluate(ctx)
	require.True(sql.ErrColumnNotFound.Is(err))
}

func TestCreateFunctions(t *testing.T) {
	require := require.New(t)
	ctx := testContext(t)

	node := NewCreateFunctions(
		[]sql.Expression{expression.NewMult(col("a.id"), lit(10))},
		[]sql.Variable{v("FUNCTIONTABLE.0")},
		fetch("a"),
	)

	rs := evaluate(t, ctx, node)
	require.Equal([]interface{}{int64(10), int64(20), int64(30)}, values(t, rs, "FUNCTIONTABLE.0"))
	require.Equal(sql.Origin{{Source: "a", Index: 1}}, rs.Origins[1])
	require.Equal("CreateFunctions(FUNCTIONTABLE.0 = (a.id * 10))\n └─ Fetch(a)\n", node.String())
}
