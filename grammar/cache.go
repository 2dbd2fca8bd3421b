// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package grammar

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/parsec-go/parsec/parser"
)

// Cache memoizes compilation results. Compiled parsers are immutable, so a
// cached parser can be handed to any number of callers. Keys cover both the
// expression and the rule definitions it was compiled against, so
// redefining a rule never serves a stale parser. Failed compilations are
// not cached.
type Cache struct {
	entries *lru.Cache[uint64, parser.Parser]
}

// NewCache returns a cache bounded to size compiled parsers.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[uint64, parser.Parser](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Compile returns the parser for src compiled against rules, reusing a
// previous result when one is cached. A nil rules compiles src standalone.
func (c *Cache) Compile(rules *Rules, src string) (parser.Parser, error) {
	key := cacheKey(rules, src)
	if p, ok := c.entries.Get(key); ok {
		return p, nil
	}
	if rules == nil {
		rules = NewRules()
	}
	p, err := rules.Compile(src)
	if err != nil {
		return parser.Parser{}, err
	}
	c.entries.Add(key, p)
	return p, nil
}

// Len returns the number of cached parsers.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func cacheKey(rules *Rules, src string) uint64 {
	h := xxhash.New()
	if rules != nil {
		var fp [8]byte
		binary.LittleEndian.PutUint64(fp[:], rules.fingerprint())
		h.Write(fp[:])
	}
	h.WriteString(src)
	return h.Sum64()
}
