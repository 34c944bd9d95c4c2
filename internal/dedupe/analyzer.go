package dedupe

import (
	"github.com/desertthunder/spotclean/internal/models"
)

type tally struct {
	first models.TrackRecord
	count int
}

// Analyze builds a [models.DuplicateReport] from the records of a single read.
//
// Records are visited in the order given; the first record seen for an identity becomes the canonical occurrence.
// Only identities seen at least twice appear in the report, ordered by the position of their canonical record.
func Analyze(records []models.TrackRecord) models.DuplicateReport {
	seen := make(map[string]*tally, len(records))
	order := make([]string, 0)

	for _, rec := range records {
		key := rec.Key()
		if key == "" {
			continue
		}

		if t, ok := seen[key]; ok {
			t.count++
			continue
		}

		seen[key] = &tally{first: rec, count: 1}
		order = append(order, key)
	}

	report := models.DuplicateReport{}
	for _, key := range order {
		t := seen[key]
		if t.count < 2 {
			continue
		}
		report.Entries = append(report.Entries, models.DuplicateEntry{Canonical: t.first, Surplus: t.count - 1})
	}
	return report
}

// Tracks extracts the playable records from a sequence of entries, skipping other media.
func Tracks(entries []models.PlaylistEntry) []models.TrackRecord {
	records := make([]models.TrackRecord, 0, len(entries))
	for _, e := range entries {
		if rec, ok := e.Track(); ok {
			records = append(records, rec)
		}
	}
	return records
}
