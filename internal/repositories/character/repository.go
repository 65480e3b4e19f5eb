// Package character provides the interface for character persistence
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/superpet/superpet-api/internal/repositories/character Repository

import (
	"context"

	"github.com/superpet/superpet-api/internal/entities/superpet"
)

// Repository defines the interface for character persistence. Characters
// are stored per player as one ordered list plus the active selection.
type Repository interface {
	// ListByPlayerID retrieves all characters for a player in creation order
	// Returns errors.InvalidArgument for empty player IDs
	// Returns errors.Internal for storage failures
	ListByPlayerID(ctx context.Context, input ListByPlayerIDInput) (*ListByPlayerIDOutput, error)

	// Get retrieves one of a player's characters
	// Returns errors.NotFound if the character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Create appends a character to the player's list
	// Returns errors.AlreadyExists if the ID is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Update replaces a stored character
	// Returns errors.NotFound if the character doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a character
	// Returns errors.NotFound if the character doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// GetActive returns the selected character, or a nil Character when no
	// character is selected or the selection points at a deleted one
	GetActive(ctx context.Context, input GetActiveInput) (*GetActiveOutput, error)

	// SetActive records the selected character ID. An empty ID clears it.
	SetActive(ctx context.Context, input SetActiveInput) (*SetActiveOutput, error)
}

// ListByPlayerIDInput defines the input for listing characters by player
type ListByPlayerIDInput struct {
	PlayerID string
}

// ListByPlayerIDOutput defines the output for listing characters by player
type ListByPlayerIDOutput struct {
	Characters []*superpet.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	PlayerID string
	ID       string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *superpet.Character
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	PlayerID  string
	Character *superpet.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *superpet.Character
}

// UpdateInput defines the input for updating a character
type UpdateInput struct {
	PlayerID  string
	Character *superpet.Character
}

// UpdateOutput defines the output for updating a character
type UpdateOutput struct {
	Character *superpet.Character
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	PlayerID string
	ID       string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct {
	// Remaining is the player's list after the delete
	Remaining []*superpet.Character
}

// GetActiveInput defines the input for reading the selection
type GetActiveInput struct {
	PlayerID string
}

// GetActiveOutput defines the output for reading the selection
type GetActiveOutput struct {
	ID        string
	Character *superpet.Character
}

// SetActiveInput defines the input for changing the selection
type SetActiveInput struct {
	PlayerID string
	ID       string
}

// SetActiveOutput defines the output for changing the selection
type SetActiveOutput struct{}
