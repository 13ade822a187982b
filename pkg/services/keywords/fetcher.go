// Package keywords defines the keyword-set fetch boundary against the SERP
// data provider and its caching decorator.
package keywords

import (
	"context"
	"errors"
	"fmt"

	"github.com/seo-tools/keyword-gap/pkg/models/domain"
)

// Fetcher retrieves the ranked keywords for one domain in one market.
// A domain with zero ranking keywords is a valid empty result, not an error.
type Fetcher interface {
	Fetch(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error)
}

// FetchError is a provider failure. Retryable failures (rate limits, 5xx)
// may be attempted again; permanent ones (bad credentials, malformed
// request) may not.
type FetchError struct {
	Provider  string
	Status    int
	Message   string
	Retryable bool
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed (status %d): %s", e.Provider, e.Status, e.Message)
}

// IsRetryable reports whether err is a FetchError worth another attempt.
func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}
