package poi

import "math"

// Dedup collapses records of the same category lying within thresholdM of
// each other; such pairs are the same real-world feature straddling a
// query or tile boundary. A named record survives over an unnamed one, and
// the first encountered wins ties. Input order is preserved.
func Dedup(records []Record, thresholdM float64) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		dup := false
		for i := range kept {
			k := &kept[i]
			if k.Category != r.Category {
				continue
			}
			if math.Hypot(k.X-r.X, k.Y-r.Y) >= thresholdM {
				continue
			}
			dup = true
			if k.Name == "" && r.Name != "" {
				*k = r
			}
			break
		}
		if !dup {
			kept = append(kept, r)
		}
	}
	return kept
}
