// Package verifier implements the startup verification pass from
// spec.md §4.9: every configured adapter is exercised once before the
// process accepts traffic; any failure aborts startup.
package verifier

import (
	"context"
	"fmt"

	"github.com/mozilla-services/antenna/pkg/publish"
	"github.com/mozilla-services/antenna/pkg/storage"
)

// Result is one adapter's verification outcome.
type Result struct {
	Name string
	Err  error
}

// Verify exercises storage.Verify and publish.Verify exactly once. It
// returns every result (for logging) plus the first error encountered, if
// any — the caller treats any error as fatal per §4.9 and §7 (exit code 3).
func Verify(ctx context.Context, store storage.Adapter, pub publish.Adapter) ([]Result, error) {
	results := []Result{
		{Name: store.Name(), Err: wrap(store.Name(), store.Verify(ctx))},
		{Name: pub.Name(), Err: wrap(pub.Name(), pub.Verify(ctx))},
	}

	for _, r := range results {
		if r.Err != nil {
			return results, r.Err
		}
	}
	return results, nil
}

func wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("verify %s: %w", name, err)
}
