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

import "strings"

// FunctionTableName is the table name given to every column computed by
// the planner rather than read from a table source.
const FunctionTableName = "FUNCTIONTABLE"

// TableName is a schema qualified table name.
type TableName struct {
	Schema string
	Name   string
}

// NewTableName returns a new table name.
func NewTableName(schema, name string) TableName {
	return TableName{Schema: schema, Name: name}
}

// IsEmpty returns whether the name has no parts at all.
func (t TableName) IsEmpty() bool {
	return t.Schema == "" && t.Name == ""
}

// Equals compares both names using the given case policy.
func (t TableName) Equals(o TableName, caseInsensitive bool) bool {
	return namesEqual(t.Schema, o.Schema, caseInsensitive) &&
		namesEqual(t.Name, o.Name, caseInsensitive)
}

func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Variable is the identity of a column. Any part of the name may be empty
// while the reference is unresolved; once the planner qualifies it every
// part the column source provides is set.
type Variable struct {
	Catalog string
	Schema  string
	Table   string
	Column  string
}

// NewVariable creates a variable for the given column of the given table.
func NewVariable(table TableName, column string) Variable {
	return Variable{Schema: table.Schema, Table: table.Name, Column: column}
}

// ParseVariable builds a variable out of a dotted name such as
// "schema.table.column".
func ParseVariable(name string) Variable {
	parts := strings.Split(name, ".")
	var v Variable
	switch len(parts) {
	case 1:
		v.Column = parts[0]
	case 2:
		v.Table, v.Column = parts[0], parts[1]
	case 3:
		v.Schema, v.Table, v.Column = parts[0], parts[1], parts[2]
	default:
		n := len(parts)
		v.Catalog = strings.Join(parts[:n-3], ".")
		v.Schema, v.Table, v.Column = parts[n-3], parts[n-2], parts[n-1]
	}
	return v
}

// TableName returns the table part of the variable.
func (v Variable) TableName() TableName {
	return TableName{Schema: v.Schema, Name: v.Table}
}

// IsQualified reports whether the variable names the table it belongs to.
func (v Variable) IsQualified() bool {
	return v.Table != ""
}

// Matches reports whether v, used as a reference, matches the given column
// identity. Only the parts present in v are compared.
func (v Variable) Matches(column Variable, caseInsensitive bool) bool {
	if v.Catalog != "" && !namesEqual(v.Catalog, column.Catalog, caseInsensitive) {
		return false
	}
	if v.Schema != "" && !namesEqual(v.Schema, column.Schema, caseInsensitive) {
		return false
	}
	if v.Table != "" && !namesEqual(v.Table, column.Table, caseInsensitive) {
		return false
	}
	return namesEqual(v.Column, column.Column, caseInsensitive)
}

func (v Variable) String() string {
	var parts []string
	for _, p := range []string{v.Catalog, v.Schema, v.Table} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(append(parts, v.Column), ".")
}

func namesEqual(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}
