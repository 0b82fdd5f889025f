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
	"sync/atomic"

	"gopkg.in/src-d/go-queryplan.v0/sql"
)

var cachePointID uint64

// NextCachePointID returns a cache point id unique within the process.
func NextCachePointID() uint64 {
	return atomic.AddUint64(&cachePointID, 1)
}

// CachePoint evaluates its child once per evaluation context and returns
// the stored result afterwards. It is placed where the planner makes two
// branches share the same sub-plan.
type CachePoint struct {
	UnaryNode
	ID uint64
}

// NewCachePoint creates a cache point with a fresh id.
func NewCachePoint(child sql.Node) *CachePoint {
	return &CachePoint{UnaryNode{child}, NextCachePointID()}
}

// Evaluate implements the Node interface.
func (c *CachePoint) Evaluate(ctx *sql.Context) (*sql.RowSet, error) {
	if rs, ok := ctx.CachedResult(c.ID); ok {
		ctx.Logger().WithField("cache_point", c.ID).Debug("cache point hit")
		return rs, nil
	}

	rs, err := c.Child.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	ctx.CacheResult(c.ID, rs)
	return rs, nil
}

// Clone implements the Node interface. The clone keeps the id, so both
// copies share the cached result.
func (c *CachePoint) Clone() sql.Node {
	return &CachePoint{UnaryNode{c.Child.Clone()}, c.ID}
}

func (c *CachePoint) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("CachePoint(%d)", c.ID)
	_ = p.WriteChildren(c.Child.String())
	return p.String()
}
