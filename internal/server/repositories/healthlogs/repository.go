package healthlogs

import (
	"context"

	"github.com/dmitrijs2005/healthlog/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, log *models.HealthLog) error
	// Probe reads at most one row and returns how many it saw.
	Probe(ctx context.Context) (int64, error)
}
