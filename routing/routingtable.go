package routing

import (
	"container/heap"
	"math"
	"sort"
)

// Route is one resolved routing-table entry: the next router to forward
// through, and the total SPF cost of the path.
type Route struct {
	NextHop string
	Cost    int
}

type spfNode struct {
	rid      string
	dist     int
	nextHop  string // next hop from self, "" until dist < inf
	visited  bool
	index    int
}

type spfQueue []*spfNode

func (q spfQueue) Len() int            { return len(q) }
func (q spfQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q spfQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *spfQueue) Push(x any) {
	n := x.(*spfNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *spfQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// ShortestPaths runs Dijkstra over the LSDB treated as a directed weighted
// graph (lsdb[u].Links[v] = w is an edge u -> v of weight w), with self as
// source. Placeholder entries have no outgoing links, so they are reached
// but lead nowhere. Ties are broken by whichever node the heap relaxes
// first, which is deterministic for a fixed LSDB but not specified beyond
// that (no equal-cost multipath).
//
// Returns a map of every reachable router id (except self) to its Route.
// Unreachable router ids are simply absent, matching next-hop derivation
// in §4.4: destinations with infinite distance are omitted.
func (d *LSDB) ShortestPaths(self string) map[string]Route {
	nodes := make(map[string]*spfNode, len(d.entries))
	for rid := range d.entries {
		nodes[rid] = &spfNode{rid: rid, dist: math.MaxInt}
	}
	if _, ok := nodes[self]; !ok {
		nodes[self] = &spfNode{rid: self, dist: math.MaxInt}
	}
	nodes[self].dist = 0

	rids := make([]string, 0, len(nodes))
	for rid := range nodes {
		rids = append(rids, rid)
	}
	sort.Strings(rids)
	pq := make(spfQueue, 0, len(nodes))
	for _, rid := range rids {
		nodes[rid].index = len(pq)
		pq = append(pq, nodes[rid])
	}
	heap.Init(&pq)

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(*spfNode)
		if cur.visited {
			continue
		}
		cur.visited = true
		if cur.dist == math.MaxInt {
			continue
		}

		entry := d.entries[cur.rid]
		neighbors := make([]string, 0, len(entry.Links))
		for neighbor := range entry.Links {
			neighbors = append(neighbors, neighbor)
		}
		sort.Strings(neighbors)
		for _, neighbor := range neighbors {
			cost := entry.Links[neighbor]
			if cost <= 0 {
				continue
			}
			next, ok := nodes[neighbor]
			if !ok || next.visited {
				continue
			}
			newDist := cur.dist + cost
			if newDist < next.dist {
				next.dist = newDist
				if cur.rid == self {
					next.nextHop = neighbor
				} else {
					next.nextHop = cur.nextHop
				}
				heap.Fix(&pq, next.index)
			}
		}
	}

	routes := make(map[string]Route, len(nodes))
	for rid, n := range nodes {
		if rid == self || n.dist == math.MaxInt {
			continue
		}
		routes[rid] = Route{NextHop: n.nextHop, Cost: n.dist}
	}
	return routes
}
