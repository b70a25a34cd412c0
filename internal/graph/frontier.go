// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import "strings"

// FrontierItem is one pending expansion.
type FrontierItem struct {
	ID    string
	Level int
}

// Frontier is the breadth-first worklist of a recursive build: a FIFO queue
// of (identifier, level) pairs plus the set of identifiers already popped.
// It is owned by a single build call and is not safe for concurrent use.
type Frontier struct {
	queue   []FrontierItem
	visited map[string]bool
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{visited: make(map[string]bool)}
}

// Push enqueues id at level. Blank and already-visited ids are ignored.
func (f *Frontier) Push(id string, level int) {
	id = strings.TrimSpace(id)
	if id == "" || f.visited[id] {
		return
	}
	f.queue = append(f.queue, FrontierItem{ID: id, Level: level})
}

// Pop dequeues the oldest unvisited item and marks it visited. It reports
// false when nothing is left.
func (f *Frontier) Pop() (FrontierItem, bool) {
	for len(f.queue) > 0 {
		item := f.queue[0]
		f.queue = f.queue[1:]
		if f.visited[item.ID] {
			continue
		}
		f.visited[item.ID] = true
		return item, true
	}
	return FrontierItem{}, false
}

// Visited reports whether id has been popped.
func (f *Frontier) Visited(id string) bool {
	return f.visited[strings.TrimSpace(id)]
}

// Len returns the number of queued items, including ones that will be
// skipped as visited.
func (f *Frontier) Len() int {
	return len(f.queue)
}
