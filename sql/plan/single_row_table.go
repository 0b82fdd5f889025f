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

// SingleRowSource is the source name of the row of SingleRowTable.
const SingleRowSource = "#SINGLE_ROW"

// SingleRowTable is a table with one row and no columns, the source of a
// SELECT without FROM clause.
type SingleRowTable struct{}

// NewSingleRowTable creates a new SingleRowTable node.
func NewSingleRowTable() *SingleRowTable { return &SingleRowTable{} }

// Children implements the Node interface.
func (*SingleRowTable) Children() []sql.Node { return nil }

// Evaluate implements the Node interface.
func (*SingleRowTable) Evaluate(*sql.Context) (*sql.RowSet, error) {
	return sql.NewBaseRowSet(SingleRowSource, nil, []sql.Row{sql.NewRow()}), nil
}

// DiscoverTables implements the Node interface.
func (*SingleRowTable) DiscoverTables(tables []sql.TableName) []sql.TableName {
	return tables
}

// DiscoverCorrelated implements the Node interface.
func (*SingleRowTable) DiscoverCorrelated(_ int, list []sql.Correlated) []sql.Correlated {
	return list
}

// Clone implements the Node interface.
func (*SingleRowTable) Clone() sql.Node { return &SingleRowTable{} }

func (*SingleRowTable) String() string { return "SingleRowTable" }
