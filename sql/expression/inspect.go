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

import "gopkg.in/src-d/go-queryplan.v0/sql"

// Variables returns every column of the current query block referenced by
// the expression, in order of appearance. Correlated references and the
// contents of sub-queries are not included.
func Variables(e sql.Expression) []sql.Variable {
	var vars []sql.Variable
	Inspect(e, func(e sql.Expression) bool {
		if v, ok := e.(*Variable); ok {
			vars = append(vars, v.Name())
		}
		return true
	})
	return vars
}

// DistinctVariables returns the variables of the expression without
// duplicates.
func DistinctVariables(e sql.Expression) []sql.Variable {
	var result []sql.Variable
	seen := make(map[sql.Variable]struct{})
	for _, v := range Variables(e) {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

// HasAggregate reports whether the expression calls an aggregate function.
func HasAggregate(e sql.Expression) bool {
	var found bool
	Inspect(e, func(e sql.Expression) bool {
		if _, ok := e.(*Aggregate); ok {
			found = true
		}
		return !found
	})
	return found
}

// HasSubquery reports whether the expression contains a sub-query.
func HasSubquery(e sql.Expression) bool {
	var found bool
	Inspect(e, func(e sql.Expression) bool {
		if _, ok := e.(*Subquery); ok {
			found = true
		}
		return !found
	})
	return found
}

// IsConstant reports whether the expression has the same value for every
// row of the current query block. Correlated references are constant
// within one evaluation of the block.
func IsConstant(e sql.Expression) bool {
	return len(Variables(e)) == 0 && !HasAggregate(e) && !HasSubquery(e)
}

// Split breaks a comparison or logical expression into its operands and
// operator.
func Split(e sql.Expression) (sql.Expression, Operator, sql.Expression, bool) {
	switch e := e.(type) {
	case *Comparison:
		return e.Left, e.Op, e.Right, true
	case *And:
		return e.Left, OpAnd, e.Right, true
	case *Or:
		return e.Left, OpOr, e.Right, true
	default:
		return nil, "", nil, false
	}
}

// Op returns the top level operator of the expression, if any.
func Op(e sql.Expression) Operator {
	_, op, _, _ := Split(e)
	return op
}

// AsVariable returns the column an expression refers to when the
// expression is nothing but a column reference.
func AsVariable(e sql.Expression) (sql.Variable, bool) {
	switch e := e.(type) {
	case *Variable:
		return e.Name(), true
	case Tuple:
		if len(e) == 1 {
			return AsVariable(e[0])
		}
	}
	return sql.Variable{}, false
}

// SubqueryPlan returns the plan of the expression when the expression is
// nothing but a planned sub-query.
func SubqueryPlan(e sql.Expression) (sql.Node, bool) {
	sq, ok := e.(*Subquery)
	if !ok || sq.Plan == nil {
		return nil, false
	}
	return sq.Plan, true
}

// SplitConjunction breaks AND expressions into their operands.
func SplitConjunction(e sql.Expression) []sql.Expression {
	return splitBy(e, OpAnd)
}

// SplitDisjunction breaks OR expressions into their operands.
func SplitDisjunction(e sql.Expression) []sql.Expression {
	return splitBy(e, OpOr)
}

func splitBy(e sql.Expression, op Operator) []sql.Expression {
	if e == nil {
		return nil
	}

	left, eop, right, ok := Split(e)
	if !ok || eop != op {
		return []sql.Expression{e}
	}

	return append(splitBy(left, op), splitBy(right, op)...)
}

// DiscoverCorrelated appends to list the correlated references of the
// expression at the given level. Plans of sub-queries are searched one
// level deeper.
func DiscoverCorrelated(e sql.Expression, level int, list []sql.Correlated) []sql.Correlated {
	if e == nil {
		return list
	}

	Inspect(e, func(e sql.Expression) bool {
		switch e := e.(type) {
		case sql.Correlated:
			if e.Level() == level {
				list = append(list, e)
			}
		case *Subquery:
			if e.Plan != nil {
				list = e.Plan.DiscoverCorrelated(level+1, list)
			}
		}
		return true
	})
	return list
}

// DiscoverTables appends to tables the physical tables read by the
// sub-queries of the expression.
func DiscoverTables(e sql.Expression, tables []sql.TableName) []sql.TableName {
	if e == nil {
		return tables
	}

	Inspect(e, func(e sql.Expression) bool {
		if sq, ok := e.(*Subquery); ok && sq.Plan != nil {
			tables = sq.Plan.DiscoverTables(tables)
		}
		return true
	})
	return tables
}
