package outreach

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/entrhq/prospect/pkg/platform"
)

var separator = strings.Repeat("=", 60)

// WriteBundle writes one block per lead: a separator header naming the
// recipient and platform, followed by the rendered message. At most limit
// leads are written; limit <= 0 means all.
func WriteBundle(w io.Writer, e *Engine, in []platform.Lead, limit int) error {
	if limit <= 0 || limit > len(in) {
		limit = len(in)
	}

	for _, lead := range in[:limit] {
		message := e.Render(lead, TemplateFor(lead.Platform))
		block := fmt.Sprintf("\n%s\nTO: %s\nPLATFORM: %s\n%s\n\n%s\n\n",
			separator, lead.Identity, lead.Platform, separator, message)
		if _, err := io.WriteString(w, block); err != nil {
			return errors.Wrap(err, "writing outreach bundle")
		}
	}
	return nil
}
