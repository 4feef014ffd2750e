package resources

import (
	"fmt"
	"strconv"
	"strings"
)

// projectIDFromURI extracts {id} from planwright://projects/{id}/progress.
func projectIDFromURI(uri string) (int64, error) {
	rest, ok := strings.CutPrefix(uri, "planwright://projects/")
	if !ok {
		return 0, fmt.Errorf("unexpected resource URI %q", uri)
	}
	idPart, _, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid project id %q in %q", idPart, uri)
	}
	return id, nil
}
