package arena

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DetailFetcher wraps the per-user detail endpoint with retries. Its
// failures never abort list traversal, detail enrichment is best-effort.
type DetailFetcher struct {
	Client *Client
	Exec   Executor
}

// Fetch returns the extended profile for userId. An AuthError propagates
// unchanged so the caller can abort the whole run, transient failures are
// retried by the executor first.
func (f DetailFetcher) Fetch(ctx context.Context, userId int64) (*DetailProfile, error) {
	ctx, span := tracer.Start(ctx, "detail:Fetch")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", userId))

	var detail *DetailProfile
	_, err := f.Exec.Do(ctx, func(ctx context.Context) error {
		fetched, err := f.Client.fetchDetail(ctx, userId)
		if err != nil {
			return err
		}
		detail = fetched
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detail fetch failed")
		return nil, err
	}
	return detail, nil
}
