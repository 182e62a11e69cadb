package leads

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/entrhq/prospect/pkg/platform"
)

// Fixed columns written before the attribute columns.
var fixedColumns = []string{"platform", "identity", "discovered_at", "match_score", "source_url"}

// WriteCSV writes one row per lead. The column set is the fixed columns
// followed by the sorted union of attribute keys observed across the batch;
// the schema is data-driven, not declared up front. The table is written once
// per run, never appended to.
func WriteCSV(w io.Writer, in []platform.Lead) error {
	attrKeys := attributeUnion(in)

	cw := csv.NewWriter(w)
	header := append(append([]string{}, fixedColumns...), attrKeys...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	row := make([]string, len(header))
	for _, l := range in {
		row[0] = l.Platform.String()
		row[1] = l.Identity
		row[2] = l.DiscoveredAt.Format(time.RFC3339)
		row[3] = strconv.Itoa(l.MatchScore)
		row[4] = l.SourceURL
		for i, k := range attrKeys {
			row[len(fixedColumns)+i] = l.Attributes[k]
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing table")
}

func attributeUnion(in []platform.Lead) []string {
	set := make(map[string]struct{})
	for _, l := range in {
		for k := range l.Attributes {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
