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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowSetIndexOf(t *testing.T) {
	require := require.New(t)

	a := ParseVariable("t.a")
	b := ParseVariable("t.b")
	rs := NewBaseRowSet("t", []Variable{a, b}, []Row{
		NewRow(int64(1), "x"),
		NewRow(int64(2), "y"),
	})

	require.Equal(0, rs.IndexOf(a))
	require.Equal(1, rs.IndexOf(b))
	require.Equal(-1, rs.IndexOf(ParseVariable("t.c")))

	v, err := rs.Row(1).Value(b)
	require.NoError(err)
	require.Equal("y", v)

	_, err = rs.Row(0).Value(ParseVariable("t.c"))
	require.True(ErrColumnNotFound.Is(err))

	require.Equal(Origin{{Source: "t", Index: 1}}, rs.Origins[1])

	filtered := rs.Filter([]int{1})
	require.Equal([]Row{NewRow(int64(2), "y")}, filtered.Rows)
	require.Equal([]Origin{{{Source: "t", Index: 1}}}, filtered.Origins)
}

func TestOriginKey(t *testing.T) {
	require := require.New(t)

	a := Origin{{Source: "a", Index: 1}, {Source: "b", Index: 2}}
	b := Origin{{Source: "b", Index: 2}, {Source: "a", Index: 1}}
	c := Origin{{Source: "a", Index: 2}, {Source: "b", Index: 1}}

	ka, err := a.Key()
	require.NoError(err)
	kb, err := b.Key()
	require.NoError(err)
	kc, err := c.Key()
	require.NoError(err)

	require.Equal(ka, kb)
	require.NotEqual(ka, kc)

	require.Equal(
		Origin{{Source: "b", Index: 2}},
		a.Project(map[string]struct{}{"b": {}}),
	)
}
