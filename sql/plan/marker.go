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
	"fmt"
	"sync/atomic"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

var markerID uint64

// NextMarkerName returns a marker name unique within the process.
func NextMarkerName() string {
	return fmt.Sprintf("#OUTER_JOIN-%d", atomic.AddUint64(&markerID, 1))
}

// Marker records the result of its child in the evaluation context under
// Name, so that an enclosing LeftOuterJoin can find the unmatched rows.
type Marker struct {
	UnaryNode
	Name string
}

// NewMarker creates a new Marker node.
func NewMarker(name string, child sql.Node) *Marker {
	return &Marker{UnaryNode{child}, name}
}

// Evaluate implements the Node interface.
func (m *Marker) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	rs, err := m.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	ctx.MarkResult(m.Name, rs)
	return rs, nil
}

// Clone implements the Node interface.
func (m *Marker) Clone() sql.Node {
	return NewMarker(m.Name, m.Child.Clone())
}

func (m *Marker) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("Marker(%s)", m.Name)
	_ = p.WriteChildren(m.Child.String())
	return p.String()
}
