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

import "gopkg.in/src-d/go-queryplan.v0/sql"

// NaturalJoin is the cartesian product of its two children.
type NaturalJoin struct {
	BinaryNode
}

// NewNaturalJoin creates a new NaturalJoin node.
func NewNaturalJoin(left, right sql.Node) *NaturalJoin {
	return &NaturalJoin{BinaryNode{left, right}}
}

// Evaluate implements the Node interface.
func (j *NaturalJoin) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.NaturalJoin")
	defer span.Finish()

	left, err := j.Left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	right, err := j.Right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	result := joinedRowSet(left, right)
	for l := range left.Rows {
		for r := range right.Rows {
			appendJoined(result, left, right, l, r)
		}
	}
	return result, nil
}

// Clone implements the Node interface.
func (j *NaturalJoin) Clone() sql.Node {
	return NewNaturalJoin(j.Left.Clone(), j.Right.Clone())
}

func (j *NaturalJoin) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("NaturalJoin")
	_ = p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}
