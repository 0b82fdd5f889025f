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

// LeftOuterJoin completes the join computed by its child with every row of
// the marked side that the join left out, padded with NULL values. The
// marked side is a Marker named MarkerName inside the child.
type LeftOuterJoin struct {
	UnaryNode
	MarkerName string
}

// NewLeftOuterJoin creates a new LeftOuterJoin node.
func NewLeftOuterJoin(markerName string, child sql.Node) *LeftOuterJoin {
	return &LeftOuterJoin{UnaryNode{child}, markerName}
}

// Evaluate implements the Node interface.
func (j *LeftOuterJoin) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	span, ctx := ctx.Span("plan.LeftOuterJoin")
	defer span.Finish()

	joined, err := j.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	marked, ok := ctx.MarkedResult(j.MarkerName)
	if !ok {
		return nil, ErrMarkerNotFound.New(j.MarkerName)
	}

	sources := make(map[string]struct{})
	for _, o := range marked.Origins {
		for s := range o.Sources() {
			sources[s] = struct{}{}
		}
	}

	matched := make(map[uint64]struct{}, len(joined.Rows))
	for _, o := range joined.Origins {
		key, err := o.Project(sources).Key()
		if err != nil {
			return nil, err
		}
		matched[key] = struct{}{}
	}

	positions := make([]int, len(joined.Columns))
	for i, c := range joined.Columns {
		positions[i] = marked.IndexOf(c)
	}

	result := &sql.RowSet{
		Columns: joined.Columns,
		Rows:    append([]sql.Row(nil), joined.Rows...),
		Origins: append([]sql.Origin(nil), joined.Origins...),
	}

	for i, o := range marked.Origins {
		key, err := o.Key()
		if err != nil {
			return nil, err
		}
		if _, ok := matched[key]; ok {
			continue
		}

		row := make(sql.Row, len(positions))
		for c, p := range positions {
			if p >= 0 {
				row[c] = marked.Rows[i][p]
			}
		}
		result.Append(row, o)
	}

	return result, nil
}

// Clone implements the Node interface.
func (j *LeftOuterJoin) Clone() sql.Node {
	return NewLeftOuterJoin(j.MarkerName, j.Child.Clone())
}

func (j *LeftOuterJoin) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("LeftOuterJoin(%s)", j.MarkerName)
	_ = p.WriteChildren(j.Child.String())
	return p.String()
}
