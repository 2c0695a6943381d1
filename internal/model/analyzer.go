package model

import "context"

// Analyzer produces a natural-language assessment of a security incident.
// Implementations call an external text-generation provider; callers must
// treat failures as degraded output, never as a reason to drop the alert.
type Analyzer interface {
	AnalyzeIncident(ctx context.Context, input string) (string, error)
}
