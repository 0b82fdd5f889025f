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

const expectedTree = `Subset(a, b)
 ├─ NaturalJoin
 │   ├─ Fetch(t1)
 │   └─ Fetch(t2)
 └─ NaturalJoin
     ├─ Fetch(t3)
     └─ Fetch(t4)
`

func TestTreePrinter(t *testing.T) {
	require := require.New(t)

	p := NewTreePrinter()
	require.NoError(p.WriteNode("Subset(%s, %s)", "a", "b"))

	p2 := NewTreePrinter()
	_ = p2.WriteNode("NaturalJoin")
	_ = p2.WriteChildren(
		"Fetch(t1)",
		"Fetch(t2)",
	)

	p3 := NewTreePrinter()
	_ = p3.WriteNode("NaturalJoin")
	_ = p3.WriteChildren(
		"Fetch(t3)",
		"Fetch(t4)",
	)

	require.NoError(p.WriteChildren(
		p2.String(),
		p3.String(),
	))

	require.Equal(expectedTree, p.String())
}

func TestTreePrinterErrors(t *testing.T) {
	require := require.New(t)

	p := NewTreePrinter()
	require.True(ErrNodeNotWritten.Is(p.WriteChildren("x")))
	require.NoError(p.WriteNode("x"))
	require.True(ErrNodeAlreadyWritten.Is(p.WriteNode("y")))
	require.NoError(p.WriteChildren("a"))
	require.True(ErrChildrenAlreadyWritten.Is(p.WriteChildren("b")))
}
