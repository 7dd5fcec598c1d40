package arena

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Pager walks the list endpoint one page at a time. The offset only
// advances after a page was fetched successfully, so a failed call can be
// retried from the exact same position. queryStart is pinned at
// construction, changing it mid-run would shift the remote's snapshot
// window and corrupt the offset semantics.
type Pager struct {
	client     *Client
	exec       Executor
	queryStart int64
	pageSize   int

	offset  int
	hasMore bool
}

func NewPager(client *Client, exec Executor, queryStart int64, pageSize int) *Pager {
	return &Pager{
		client:     client,
		exec:       exec,
		queryStart: queryStart,
		pageSize:   pageSize,
		hasMore:    true,
	}
}

// Next yields the next page of profiles in remote order. ok is false once
// the remote reports no more pages. An error leaves the pager position
// untouched, calling Next again retries the same page.
func (p *Pager) Next(ctx context.Context) (profiles []ListProfile, ok bool, err error) {
	if !p.hasMore {
		return nil, false, nil
	}

	ctx, span := tracer.Start(ctx, "pager:Next")
	defer span.End()
	span.SetAttributes(attribute.Int("offset", p.offset))

	var page *ListPage
	_, err = p.exec.Do(ctx, func(ctx context.Context) error {
		fetched, err := p.client.fetchListPage(ctx, p.queryStart, p.pageSize, p.offset)
		if err != nil {
			return err
		}
		page = fetched
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "page fetch failed")
		return nil, false, err
	}

	p.offset += len(page.Profiles)
	p.hasMore = page.HasMore && len(page.Profiles) > 0
	return page.Profiles, true, nil
}

// Offset reports how many profiles have been consumed so far.
func (p *Pager) Offset() int {
	return p.offset
}
