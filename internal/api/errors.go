package api

import (
	"fmt"

	"property-api/internal/report"
)

func invalidArg(what, raw string) error {
	return fmt.Errorf("%s %q: %w", what, raw, report.ErrInvalidArgument)
}
