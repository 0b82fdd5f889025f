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

package sql

import (
	"sort"

	"github.com/mitchellh/hashstructure"
)

// Row is a tuple of values.
type Row []interface{}

// NewRow creates a row from the given values.
func NewRow(values ...interface{}) Row {
	row := make([]interface{}, len(values))
	copy(row, values)
	return row
}

// HashRow returns a hash of the given values, used as the key of row sets
// that must be deduplicated or grouped.
func HashRow(values ...interface{}) (uint64, error) {
	return hashstructure.Hash(values, nil)
}

// RowRef identifies one row of one table source. The refs attached to a row
// of a RowSet tell which base rows were combined to produce it.
type RowRef struct {
	Source string
	Index  int
}

// Origin is the list of base rows a row was built from.
type Origin []RowRef

// Key returns a hash of the origin that does not depend on the order of
// its refs.
func (o Origin) Key() (uint64, error) {
	refs := make([]RowRef, len(o))
	copy(refs, o)
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Source != refs[j].Source {
			return refs[i].Source < refs[j].Source
		}
		return refs[i].Index < refs[j].Index
	})
	return hashstructure.Hash(refs, nil)
}

// Project returns the refs of the origin that belong to the given sources.
func (o Origin) Project(sources map[string]struct{}) Origin {
	var result Origin
	for _, ref := range o {
		if _, ok := sources[ref.Source]; ok {
			result = append(result, ref)
		}
	}
	return result
}

// Sources returns the set of source names present in the origin.
func (o Origin) Sources() map[string]struct{} {
	result := make(map[string]struct{}, len(o))
	for _, ref := range o {
		result[ref.Source] = struct{}{}
	}
	return result
}

// RowSet is the materialized result of evaluating a plan node.
type RowSet struct {
	Columns []Variable
	Rows    []Row
	Origins []Origin

	index map[Variable]int
}

// NewRowSet creates an empty row set with the given columns.
func NewRowSet(columns ...Variable) *RowSet {
	return &RowSet{Columns: columns}
}

// NewBaseRowSet creates a row set whose rows come straight from a table
// source with the given name.
func NewBaseRowSet(source string, columns []Variable, rows []Row) *RowSet {
	rs := &RowSet{Columns: columns, Rows: rows, Origins: make([]Origin, len(rows))}
	for i := range rows {
		rs.Origins[i] = Origin{{Source: source, Index: i}}
	}
	return rs
}

// Append adds a row with its origin to the set.
func (rs *RowSet) Append(row Row, origin Origin) {
	rs.Rows = append(rs.Rows, row)
	rs.Origins = append(rs.Origins, origin)
}

// Len returns the number of rows in the set.
func (rs *RowSet) Len() int {
	return len(rs.Rows)
}

// IndexOf returns the position of the given column, or -1 if the set has no
// such column.
func (rs *RowSet) IndexOf(v Variable) int {
	if rs.index == nil {
		rs.index = make(map[Variable]int, len(rs.Columns))
		for i := len(rs.Columns) - 1; i >= 0; i-- {
			rs.index[rs.Columns[i]] = i
		}
	}

	i, ok := rs.index[v]
	if !ok {
		return -1
	}
	return i
}

// Row returns a context to evaluate expressions against the i-th row.
func (rs *RowSet) Row(i int) RowContext {
	return &setRow{set: rs, row: rs.Rows[i]}
}

// RowContextFor returns a context over an arbitrary row laid out with the
// columns of this set.
func (rs *RowSet) RowContextFor(row Row) RowContext {
	return &setRow{set: rs, row: row}
}

// Filter returns a new set with the rows whose positions are given.
func (rs *RowSet) Filter(positions []int) *RowSet {
	result := &RowSet{
		Columns: rs.Columns,
		Rows:    make([]Row, 0, len(positions)),
		Origins: make([]Origin, 0, len(positions)),
	}
	for _, p := range positions {
		result.Rows = append(result.Rows, rs.Rows[p])
		result.Origins = append(result.Origins, rs.Origins[p])
	}
	return result
}

type setRow struct {
	set *RowSet
	row Row
}

func (r *setRow) Value(v Variable) (interface{}, error) {
	i := r.set.IndexOf(v)
	if i < 0 {
		return nil, ErrColumnNotFound.New(v.String())
	}
	return r.row[i], nil
}

// EmptyRowContext is a row context without any columns, used to evaluate
// constant expressions.
var EmptyRowContext RowContext = emptyRow{}

type emptyRow struct{}

func (emptyRow) Value(v Variable) (interface{}, error) {
	return nil, ErrColumnNotFound.New(v.String())
}
