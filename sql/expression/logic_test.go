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

func TestAndOr(t *testing.T) {
	testCases := []struct {
		name        string
		left, right interface{}
		and, or     interface{}
	}{
		{"true true", true, true, true, true},
		{"true false", true, false, false, true},
		{"false false", false, false, false, false},
		{"null true", nil, true, nil, true},
		{"null false", nil, false, false, nil},
		{"null null", nil, nil, nil, nil},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := sql.NewEmptyContext()

			v, err := NewAnd(lit(tt.left), lit(tt.right)).Eval(ctx, nil)
			require.NoError(err)
			require.Equal(tt.and, v)

			v, err = NewOr(lit(tt.left), lit(tt.right)).Eval(ctx, nil)
			require.NoError(err)
			require.Equal(tt.or, v)
		})
	}
}

func TestNot(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	v, err := NewNot(lit(true)).Eval(ctx, nil)
	require.NoError(err)
	require.Equal(false, v)

	v, err = NewNot(lit(nil)).Eval(ctx, nil)
	require.NoError(err)
	require.Nil(v)
}

func TestJoinAndSplit(t *testing.T) {
	require := require.New(t)

	a := NewEquals(NewUnresolvedColumn("a"), lit(int64(1)))
	b := NewEquals(NewUnresolvedColumn("b"), lit(int64(2)))
	c := NewEquals(NewUnresolvedColumn("c"), lit(int64(3)))

	require.Nil(JoinAnd())
	require.Equal(a, JoinAnd(nil, a))

	e := JoinAnd(a, b, c)
	require.Equal([]sql.Expression{a, b, c}, SplitConjunction(e))
	require.Equal([]sql.Expression{e}, SplitDisjunction(e))

	or := NewOr(a, NewOr(b, c))
	require.Equal([]sql.Expression{a, b, c}, SplitDisjunction(or))
	require.Equal("(a = 1 OR (b = 2 OR c = 3))", or.String())
}
