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
	"fmt"
	"hash/crc64"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	errors "gopkg.in/src-d/go-errors.v1"
)

var table = crc64.MakeTable(crc64.ISO)

// CacheKey returns a hash of the given value to be used as key in
// a cache.
func CacheKey(v interface{}) uint64 {
	return crc64.Checksum([]byte(fmt.Sprintf("%#v", v)), table)
}

// ErrKeyNotFound is returned when the key could not be found in the cache.
var ErrKeyNotFound = errors.NewKind("memory: key %d not found in cache")

// DefaultStatementCacheSize is the number of statements kept when no size
// is configured.
const DefaultStatementCacheSize = 128

// StatementCache maps query text to the statement parsed from it. Stored
// statements are never handed out; every lookup returns a private copy so
// executions of the same text do not share any state.
type StatementCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewStatementCache creates a cache holding at most size statements.
func NewStatementCache(size int) (*StatementCache, error) {
	if size <= 0 {
		size = DefaultStatementCacheSize
	}

	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &StatementCache{cache: cache}, nil
}

// Put stores a copy of the statement for the given query.
func (c *StatementCache) Put(query string, stmt Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(CacheKey(query), cachedStatement{query, stmt.CloneStatement()})
}

// Get returns a copy of the statement stored for the given query.
func (c *StatementCache) Get(query string) (Statement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := CacheKey(query)
	v, ok := c.cache.Get(k)
	if !ok {
		return nil, ErrKeyNotFound.New(k)
	}

	cs := v.(cachedStatement)
	if cs.query != query {
		return nil, ErrKeyNotFound.New(k)
	}

	return cs.stmt.CloneStatement(), nil
}

// Len returns the number of cached statements.
func (c *StatementCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

type cachedStatement struct {
	query string
	stmt  Statement
}
