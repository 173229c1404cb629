// Package university checks student identifiers against the institution's
// records.
package university

import (
	"context"
	"log/slog"
)

type Verifier interface {
	// Verify reports whether universityID belongs to an active member.
	Verify(ctx context.Context, universityID string) (bool, error)
}

// DemoIDs are the identifiers accepted by the demo verifier.
var DemoIDs = []string{
	"U2025-001", "U2025-002", "U2025-003", "U2025-004", "U2025-005",
	"ADMIN-001", "ADMIN-002",
}

// StaticVerifier accepts a fixed set of identifiers.
type StaticVerifier struct {
	valid  map[string]struct{}
	logger *slog.Logger
}

func NewStaticVerifier(ids []string, logger *slog.Logger) *StaticVerifier {
	valid := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		valid[id] = struct{}{}
	}
	return &StaticVerifier{valid: valid, logger: logger}
}

func (v *StaticVerifier) Verify(_ context.Context, universityID string) (bool, error) {
	_, ok := v.valid[universityID]
	v.logger.Debug("university id checked", "university_id", universityID, "valid", ok)
	return ok, nil
}
