package dedupe

import (
	"cmp"
	"slices"

	"github.com/desertthunder/spotclean/internal/models"
)

type occurrence struct {
	key      string
	position int
}

// PlanSpecificRemoval returns every occurrence of identity after the first, ordered by descending position.
//
// The canonical occurrence is never a candidate. A blank identity or one that occurs at most once yields an
// empty plan.
func PlanSpecificRemoval(records []models.TrackRecord, identity string) []models.TrackRecord {
	key := models.IdentityKey(identity)
	if key == "" {
		return nil
	}

	var candidates []models.TrackRecord
	seenFirst := false
	for _, rec := range records {
		if rec.Key() != key {
			continue
		}
		if !seenFirst {
			seenFirst = true
			continue
		}
		candidates = append(candidates, rec)
	}

	sortDescending(candidates)
	return candidates
}

// PlanCollapseRemoval returns every occurrence of every listed identity, canonical occurrences included, ordered by
// descending position.
//
// Candidates are unique by identity and position, so repeated identities in the input do not produce repeated
// removals.
func PlanCollapseRemoval(records []models.TrackRecord, identities []string) []models.TrackRecord {
	wanted := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		if key := models.IdentityKey(id); key != "" {
			wanted[key] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	seen := make(map[occurrence]struct{})
	var candidates []models.TrackRecord
	for _, rec := range records {
		key := rec.Key()
		if _, ok := wanted[key]; !ok {
			continue
		}

		occ := occurrence{key: key, position: rec.Position}
		if _, dup := seen[occ]; dup {
			continue
		}
		seen[occ] = struct{}{}
		candidates = append(candidates, rec)
	}

	sortDescending(candidates)
	return candidates
}

// PlanReinsertion restores one copy of each identity in removed.
//
// The survivor of an identity is its lowest-position record. Survivors are ordered by that position and split into
// batches of at most batchSize. A batch is inserted at the smaller of its first survivor's original position and
// the playlist size at that point, which starts at sizeAfterRemoval and grows by every batch already planned.
// A batchSize below one plans a single batch.
func PlanReinsertion(removed []models.TrackRecord, sizeAfterRemoval, batchSize int) models.ReinsertionPlan {
	survivors := make(map[string]models.TrackRecord, len(removed))
	for _, rec := range removed {
		key := rec.Key()
		if key == "" {
			continue
		}
		if cur, ok := survivors[key]; !ok || rec.Position < cur.Position {
			survivors[key] = rec
		}
	}

	ordered := make([]models.TrackRecord, 0, len(survivors))
	for _, rec := range survivors {
		ordered = append(ordered, rec)
	}
	slices.SortFunc(ordered, func(a, b models.TrackRecord) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.Key(), b.Key()))
	})

	if batchSize < 1 {
		batchSize = max(len(ordered), 1)
	}

	plan := models.ReinsertionPlan{}
	size := max(sizeAfterRemoval, 0)
	for batch := range slices.Chunk(ordered, batchSize) {
		plan.Batches = append(plan.Batches, models.InsertBatch{
			Position: min(batch[0].Position, size),
			Records:  batch,
		})
		size += len(batch)
	}
	return plan
}

// Locators returns the locators of records in order.
func Locators(records []models.TrackRecord) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Locator
	}
	return out
}

func sortDescending(records []models.TrackRecord) {
	slices.SortStableFunc(records, func(a, b models.TrackRecord) int {
		return cmp.Compare(b.Position, a.Position)
	})
}
