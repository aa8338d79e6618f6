package unitofwork

import "context"

// RepositoryFactory hands out a fresh, request-scoped unit of work.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
