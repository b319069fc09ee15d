package pgsql

import (
	portsrepo "github.com/contactkeeper/contacts_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all pgx-backed repositories over one pool.
func NewRepositoryProvider(db *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		User:    NewUserRepository(db),
		Contact: NewContactRepository(db),
	}
}
