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

// valuesNode is a plan returning a fixed single column table. The values
// it returns are shifted by the outer row's o.shift column when present.
type valuesNode struct {
	values []interface{}
}

func (n *valuesNode) String() string       { return "Values" }
func (n *valuesNode) Children() []sql.Node { return nil }
func (n *valuesNode) Clone() sql.Node {
	return &valuesNode{append([]interface{}(nil), n.values...)}
}
func (n *valuesNode) DiscoverTables(t []sql.TableName) []sql.TableName { return t }
func (n *valuesNode) DiscoverCorrelated(_ int, l []sql.Correlated) []sql.Correlated {
	return l
}

func (n *valuesNode) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	var shift int64
	if outer, ok := ctx.OuterRow(1); ok {
		v, err := outer.Value(sql.ParseVariable("o.shift"))
		if err != nil {
			return nil, err
		}
		shift = v.(int64)
	}

	rs := sql.NewRowSet(sql.ParseVariable("v.x"))
	for _, v := range n.values {
		if i, ok := v.(int64); ok {
			v = i + shift
		}
		rs.Append(sql.NewRow(v), nil)
	}
	return rs, nil
}

func TestSubqueryScalar(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	_, err := NewSubquery(nil).Eval(ctx, nil)
	require.True(ErrSubqueryNotPlanned.Is(err))

	sq := NewSubquery(nil).WithPlan(&valuesNode{[]interface{}{int64(7)}})
	v, err := sq.Eval(ctx, nil)
	require.NoError(err)
	require.Equal(int64(7), v)

	v, err = NewSubquery(nil).WithPlan(&valuesNode{}).Eval(ctx, nil)
	require.NoError(err)
	require.Nil(v)

	_, err = NewSubquery(nil).WithPlan(&valuesNode{[]interface{}{int64(1), int64(2)}}).Eval(ctx, nil)
	require.True(ErrSubqueryMultipleRows.Is(err))
}

func TestSubqueryOuterRow(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	outer := sql.NewBaseRowSet(
		"o",
		[]sql.Variable{sql.ParseVariable("o.shift")},
		[]sql.Row{sql.NewRow(int64(10))},
	)

	sq := NewSubquery(nil).WithPlan(&valuesNode{[]interface{}{int64(1), int64(2)}})
	values, err := sq.EvalValues(ctx, outer.Row(0))
	require.NoError(err)
	require.Equal([]interface{}{int64(11), int64(12)}, values)

	in := NewIn(lit(int64(12)), sq)
	require.Equal(Any, in.Quantifier)
	v, err := in.Eval(ctx, outer.Row(0))
	require.NoError(err)
	require.Equal(true, v)
}

func TestExists(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	v, err := NewExists(NewSubquery(nil).WithPlan(&valuesNode{[]interface{}{nil}})).Eval(ctx, nil)
	require.NoError(err)
	require.Equal(true, v)

	v, err = NewExists(NewSubquery(nil).WithPlan(&valuesNode{})).Eval(ctx, nil)
	require.NoError(err)
	require.Equal(false, v)

	require.True(HasSubquery(NewNot(NewExists(NewSubquery(nil)))))
}

func TestCloneSubquery(t *testing.T) {
	require := require.New(t)

	node := &valuesNode{[]interface{}{int64(1)}}
	e := NewAnd(NewExists(NewSubquery(nil).WithPlan(node)), lit(true))

	cloned := Clone(e)
	require.Equal(e.String(), cloned.String())

	exists := cloned.(*And).Left.(*Exists)
	require.False(sql.Node(node) == exists.Query.Plan)
}
