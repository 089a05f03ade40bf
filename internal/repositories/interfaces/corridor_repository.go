package interfaces

import (
	"context"

	"gotransit/internal/models"
)

type CorridorRepository interface {
	GetActive(ctx context.Context) ([]*models.TransitCorridor, error)
	GetByModes(ctx context.Context, modes []models.TransportMode) ([]*models.TransitCorridor, error)
}
