// Package battle stores live battle sessions, one per player
package battle

import (
	"context"

	"github.com/superpet/superpet-api/internal/engine"
)

// Repository defines the storage interface for battle sessions
type Repository interface {
	// Save stores the player's current battle, replacing any previous one
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Get retrieves the player's current battle
	// Returns errors.NotFound when the player is not in a battle
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Delete removes the player's battle
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// SaveInput defines the request for saving a battle
type SaveInput struct {
	PlayerID string
	Battle   *engine.Battle
}

// SaveOutput defines the response for saving a battle
type SaveOutput struct {
	Success bool
}

// GetInput defines the request for retrieving a battle
type GetInput struct {
	PlayerID string
}

// GetOutput defines the response for retrieving a battle
type GetOutput struct {
	Battle *engine.Battle
}

// DeleteInput defines the request for deleting a battle
type DeleteInput struct {
	PlayerID string
}

// DeleteOutput defines the response for deleting a battle
type DeleteOutput struct {
	Success bool
}
