package cleanup

import (
	"context"

	"docbud-go/internal/types"
)

// Identity is the no-op backend. It hands the transcript back untouched and
// reports the attempt as skipped, so a chain ending here always delivers.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Available() bool { return true }

func (Identity) Clean(_ context.Context, transcript string) types.CleanupResult {
	return types.CleanupResult{Text: transcript, Outcome: types.CleanupSkipped}
}
