// Package leads aggregates the records produced by platform extraction:
// merging batches from multiple sources, deduplicating by identity, scoring
// against quality keywords and persisting the result as a CSV table.
package leads

import (
	"sort"
	"strings"

	"github.com/entrhq/prospect/pkg/platform"
)

// Merge concatenates batches into a single slice, preserving the arrival
// order of each source.
func Merge(batches ...[]platform.Lead) []platform.Lead {
	var total int
	for _, b := range batches {
		total += len(b)
	}
	out := make([]platform.Lead, 0, total)
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}

// Deduplicate removes leads sharing a (platform, identity) key, keeping the
// first occurrence. Sources are not assumed disjoint; the same contact found
// on the same platform by two searches collapses to one lead.
func Deduplicate(in []platform.Lead) []platform.Lead {
	type key struct {
		platform platform.Platform
		identity string
	}
	seen := make(map[key]struct{}, len(in))
	out := make([]platform.Lead, 0, len(in))
	for _, l := range in {
		k := key{l.Platform, l.Identity}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}

// FilterByKeywords retains leads whose identity or attribute text contains at
// least one keyword, case-insensitively. Each retained lead's MatchScore is
// the count of distinct keywords matched. The result is ordered by MatchScore
// descending; ties keep their original relative order.
func FilterByKeywords(in []platform.Lead, keywords []string) []platform.Lead {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	if len(lowered) == 0 {
		return nil
	}

	out := make([]platform.Lead, 0, len(in))
	for _, l := range in {
		text := searchText(l)
		score := 0
		for _, kw := range lowered {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		l.MatchScore = score
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})
	return out
}

func searchText(l platform.Lead) string {
	var b strings.Builder
	b.WriteString(l.Identity)
	for _, v := range sortedValues(l.Attributes) {
		b.WriteByte(' ')
		b.WriteString(v)
	}
	return strings.ToLower(b.String())
}

func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[k])
	}
	return values
}
