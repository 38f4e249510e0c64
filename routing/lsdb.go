// Package routing holds the Link-State Database, the Dijkstra solver, and
// the kernel route installer. Grounded on the teacher's routing.Router
// (lsdb.go/router.go/routingtable.go): the LSDB-keyed-by-address, SPF, and
// next-hop-derivation shapes all carry over, generalized from
// netip.Addr-keyed unweighted adjacency to RouterId-keyed weighted
// adjacency (this protocol advertises per-neighbor cost, the teacher's did
// not) and from netip.AddrPort next hops to RouterId next hops resolved to
// an IP only at install time.
package routing

import (
	"time"

	"hiverouter.dev/lsrouted/internal/assert"
	"hiverouter.dev/lsrouted/wire"
)

// PlaceholderSequence marks an LSDB entry inserted only to keep the graph
// closed during SPF, before any LSA has actually arrived from that router.
const PlaceholderSequence = -1

// Entry is one router's link-state as currently known. The local router's
// own entry is produced by the LSA Engine before being stored; every other
// entry arrives from a received LSA, or is a placeholder.
type Entry struct {
	SequenceNumber int
	Timestamp      float64
	Addresses      []string
	Links          map[string]int
}

// IsPlaceholder reports whether this entry has never had a real LSA
// installed into it.
func (e Entry) IsPlaceholder() bool {
	return e.SequenceNumber == PlaceholderSequence
}

func placeholder() Entry {
	return Entry{SequenceNumber: PlaceholderSequence, Links: map[string]int{}}
}

// LSDB is the replicated link-state database. Callers outside this package
// never mutate it directly; Update, InstallLocal and Remove are the only
// write paths. Update reports whether the entry actually changed so callers
// know whether to recompute routes and reflood; the other two return
// nothing.
type LSDB struct {
	entries map[string]Entry
}

// NewLSDB creates an empty database.
func NewLSDB() *LSDB {
	return &LSDB{entries: make(map[string]Entry)}
}

// Get returns the current entry for rid, if any.
func (d *LSDB) Get(rid string) (Entry, bool) {
	e, ok := d.entries[rid]
	return e, ok
}

// RouterIDs returns every router id this LSDB has an entry for, including
// placeholders.
func (d *LSDB) RouterIDs() []string {
	ids := make([]string, 0, len(d.entries))
	for rid := range d.entries {
		ids = append(ids, rid)
	}
	return ids
}

// Update applies a received LSA per the sequence-number rule: an entry is
// replaced only if the incoming sequence number is strictly higher than
// what is already stored. Returns false for a stale or duplicate LSA (no
// state change, caller must not reflood). Every router named in the LSA's
// links that has no entry yet gets a placeholder, keeping the graph closed
// for SPF.
func (d *LSDB) Update(lsa *wire.LSA) bool {
	assert.Assert(lsa != nil, "lsdb: Update called with nil LSA")

	if existing, ok := d.entries[lsa.RouterID]; ok && lsa.SequenceNumber <= existing.SequenceNumber {
		return false
	}

	d.entries[lsa.RouterID] = Entry{
		SequenceNumber: lsa.SequenceNumber,
		Timestamp:      lsa.Timestamp,
		Addresses:      lsa.Addresses,
		Links:          lsa.Links,
	}

	for neighbor := range lsa.Links {
		if _, ok := d.entries[neighbor]; !ok {
			d.entries[neighbor] = placeholder()
		}
	}

	return true
}

// InstallLocal installs this router's own LSA into the LSDB before it is
// transmitted, so the self-entry is always at least as fresh as what was
// just sent. Unlike Update, the sequence number is trusted unconditionally
// since the LSA Engine is the sole owner of it.
func (d *LSDB) InstallLocal(rid string, seq int, addresses []string, links map[string]int) {
	d.entries[rid] = Entry{
		SequenceNumber: seq,
		Timestamp:      float64(time.Now().UnixNano()) / 1e9,
		Addresses:      addresses,
		Links:          links,
	}
}

// Remove deletes rid's entry entirely (neighbor failure per §4.5: the
// entry is dropped, not just its links).
func (d *LSDB) Remove(rid string) {
	delete(d.entries, rid)
}

// Len reports how many entries (including placeholders) the LSDB holds.
func (d *LSDB) Len() int {
	return len(d.entries)
}
