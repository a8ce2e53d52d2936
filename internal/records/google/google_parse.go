package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/api/googleapi"

	"financas/internal/core"
)

// rowsToRaw keys each data row by the worksheet's header row. Short rows
// get empty values for the missing trailing fields; cells beyond the header
// width are ignored. An empty or header-only worksheet yields no rows.
func rowsToRaw(values [][]any) []core.RawRow {
	if len(values) < 2 {
		return []core.RawRow{}
	}

	keys := make([]string, len(values[0]))
	for i, v := range values[0] {
		keys[i] = strings.TrimSpace(fmt.Sprint(v))
	}

	out := make([]core.RawRow, 0, len(values)-1)
	for _, row := range values[1:] {
		raw := make(core.RawRow, len(keys))
		for i, key := range keys {
			if key == "" {
				continue
			}
			if i < len(row) {
				raw[key] = row[i]
			} else {
				raw[key] = ""
			}
		}
		out = append(out, raw)
	}
	return out
}

// isMissingSheet matches the API's answers for a range that names a
// worksheet the spreadsheet does not have.
func isMissingSheet(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == 404 {
		return true
	}
	return apiErr.Code == 400 && strings.Contains(apiErr.Message, "Unable to parse range")
}

// isTransient classifies failures worth one retry: timeouts, connection
// errors and server-side 5xx answers.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500 || apiErr.Code == 429
	}
	return false
}
