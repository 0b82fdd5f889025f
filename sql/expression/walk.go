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

// Inspect traverses the expression tree in depth-first order: It starts by
// calling f(expr); expr must not be nil. If f returns true, Inspect invokes
// f recursively for each of the children of expr. Sub-queries are visited
// but not entered, their expressions belong to another query block.
func Inspect(expr sql.Expression, f func(sql.Expression) bool) {
	if !f(expr) {
		return
	}

	for _, child := range expr.Children() {
		Inspect(child, f)
	}
}

// TransformUp applies a transformation function to the given expression
// from the bottom up.
func TransformUp(e sql.Expression, f func(sql.Expression) (sql.Expression, error)) (sql.Expression, error) {
	children := e.Children()
	if len(children) == 0 {
		return f(e)
	}

	newChildren := make([]sql.Expression, len(children))
	for i, c := range children {
		c, err := TransformUp(c, f)
		if err != nil {
			return nil, err
		}
		newChildren[i] = c
	}

	e, err := e.WithChildren(newChildren...)
	if err != nil {
		return nil, err
	}

	return f(e)
}

// Clone returns a deep copy of the expression. Leaves are immutable and
// shared; sub-queries get their statement and plan copied.
func Clone(e sql.Expression) sql.Expression {
	if e == nil {
		return nil
	}

	cloned, err := TransformUp(e, func(e sql.Expression) (sql.Expression, error) {
		if sq, ok := e.(*Subquery); ok {
			return sq.Clone(), nil
		}
		return e, nil
	})
	if err != nil {
		// WithChildren is always called with the same number of children.
		panic(err)
	}
	return cloned
}
