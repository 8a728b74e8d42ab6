package roster

import "context"

// Repository keeps uploaded rosters between requests. Implementations return
// ErrRosterNotFound for unknown ids.
type Repository interface {
	SaveRoster(ctx context.Context, r Roster) error
	GetRoster(ctx context.Context, id string) (Roster, error)
	DeleteRoster(ctx context.Context, id string) error
}
