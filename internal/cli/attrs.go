package cli

import (
	"encoding/json"
	"strings"

	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/graph"
)

// parseAttrFlags turns repeated --attr key=value flags into attributes.
// Values are decoded as JSON when possible (numbers, booleans, null, arrays,
// objects, quoted strings) and kept verbatim otherwise. A later flag for the
// same key wins.
func parseAttrFlags(flags []string) (graph.Attributes, error) {
	attrs := make(graph.Attributes, len(flags))
	for _, f := range flags {
		key, raw, ok := strings.Cut(f, "=")
		if !ok {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "attribute %q must have the form key=value", f)
		}
		key = strings.TrimSpace(key)
		if err := cgerrors.ValidateAttributeKey(key); err != nil {
			return nil, err
		}
		attrs[key] = attrValue(raw)
	}
	return attrs, nil
}

func attrValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
