package sale

import "context"

// Repository stores committed sales. Records are immutable: there is no
// update, only insert and reads.
type Repository interface {
	Insert(ctx context.Context, s *Sale) error
	Get(ctx context.Context, id string) (*Sale, error)
	List(ctx context.Context) ([]*Sale, error)
}
