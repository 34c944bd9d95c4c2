package models

// DuplicateEntry is one duplicated identity: the first occurrence read and how many copies follow it.
type DuplicateEntry struct {
	Canonical TrackRecord `json:"canonical"`
	Surplus   int         `json:"surplus"`
}

// DuplicateReport lists every identity that occurs more than once, ordered by canonical position.
type DuplicateReport struct {
	Entries []DuplicateEntry `json:"entries"`
}

// Len returns the number of duplicated identities.
func (r DuplicateReport) Len() int {
	return len(r.Entries)
}

// Empty reports whether no duplicates were found.
func (r DuplicateReport) Empty() bool {
	return len(r.Entries) == 0
}

// Total returns the number of surplus copies across all identities.
func (r DuplicateReport) Total() int {
	total := 0
	for _, e := range r.Entries {
		total += e.Surplus
	}
	return total
}

// Lookup finds the entry for identity, compared case-insensitively.
func (r DuplicateReport) Lookup(identity string) (DuplicateEntry, bool) {
	key := IdentityKey(identity)
	for _, e := range r.Entries {
		if e.Canonical.Key() == key {
			return e, true
		}
	}
	return DuplicateEntry{}, false
}

// Identities returns the canonical identity of every entry in report order.
func (r DuplicateReport) Identities() []string {
	ids := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		ids[i] = e.Canonical.Identity
	}
	return ids
}

// InsertBatch is a group of tracks inserted together, contiguously, at Position.
type InsertBatch struct {
	Position int
	Records  []TrackRecord
}

// Placement is where a single reinserted track is expected to land.
type Placement struct {
	Locator        string
	TargetPosition int
}

// ReinsertionPlan restores one surviving copy per collapsed identity, in ascending original order.
type ReinsertionPlan struct {
	Batches []InsertBatch
}

// Len returns the number of tracks the plan inserts.
func (p ReinsertionPlan) Len() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b.Records)
	}
	return n
}

// Placements flattens the plan into per-track target positions.
func (p ReinsertionPlan) Placements() []Placement {
	out := make([]Placement, 0, p.Len())
	for _, b := range p.Batches {
		for i, rec := range b.Records {
			out = append(out, Placement{Locator: rec.Locator, TargetPosition: b.Position + i})
		}
	}
	return out
}
