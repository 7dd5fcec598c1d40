package crawler

import (
	"context"

	"arena-crawler/services/crawler/db"
)

// DedupGate decides whether a username still needs fetching. The check
// runs before any detail http call, skipping a profile costs one
// existence lookup and zero requests.
type DedupGate struct {
	qry *db.Queries
	// force re-fetches profiles that are already persisted
	force bool
}

func NewDedupGate(qry *db.Queries, force bool) DedupGate {
	return DedupGate{qry: qry, force: force}
}

func (g DedupGate) ShouldFetch(ctx context.Context, username string) (bool, error) {
	if g.force {
		return true, nil
	}
	exists, err := g.qry.ProfileExists(ctx, username)
	if err != nil {
		return false, &DatabaseError{Err: err}
	}
	return !exists, nil
}
