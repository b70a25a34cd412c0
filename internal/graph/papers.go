// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"regexp"
	"strings"

	"github.com/pdiddy/citation-graph/pkg/types"
)

// arxivVersion matches a trailing version suffix such as "v7".
var arxivVersion = regexp.MustCompile(`v\d+$`)

// paperSet keeps papers in insertion order. A paper is the same record as a
// stored one when it shares the arXiv id (ignoring the version suffix) or
// the trimmed title. Adding a known paper only fills the stored record's
// empty fields; the first title seen stays the display name.
type paperSet struct {
	order []*types.Paper
	byKey map[string]*types.Paper
	byID  map[string]*types.Paper
}

func newPaperSet() *paperSet {
	return &paperSet{
		byKey: make(map[string]*types.Paper),
		byID:  make(map[string]*types.Paper),
	}
}

func idKey(id string) string {
	return arxivVersion.ReplaceAllString(strings.TrimSpace(id), "")
}

// add stores p and returns the stored record, or nil when p has no title.
func (s *paperSet) add(p types.Paper) *types.Paper {
	key := p.Key()
	if key == "" {
		return nil
	}
	id := idKey(p.ArxivID)

	existing := s.byID[id]
	if id == "" || existing == nil {
		existing = s.byKey[key]
	}
	if existing != nil {
		existing.MergeFrom(&p)
		s.index(existing, key, id)
		return existing
	}

	p.Title = key
	stored := &p
	s.order = append(s.order, stored)
	s.index(stored, key, id)
	return stored
}

// index registers key and id as aliases of stored without overriding an
// earlier record.
func (s *paperSet) index(stored *types.Paper, key, id string) {
	if _, ok := s.byKey[key]; !ok {
		s.byKey[key] = stored
	}
	if id == "" {
		id = idKey(stored.ArxivID)
	}
	if id != "" {
		if _, ok := s.byID[id]; !ok {
			s.byID[id] = stored
		}
	}
}

func (s *paperSet) all() []*types.Paper {
	return append([]*types.Paper(nil), s.order...)
}
