package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
)

// ClientRepository implements usecase.ClientRepository. The client table is
// maintained by the management screens; this side only reads names.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client

	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM clients WHERE id = $1`, id).
		Scan(&client.ID, &client.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}

		return nil, err
	}

	return &client, nil
}
