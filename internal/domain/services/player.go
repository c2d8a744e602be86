package services

import (
	"context"

	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/course"
)

// PlayerService serves the course player: the content tree, the caller's
// completion state and next/previous resolution.
type PlayerService interface {
	// GetPlayer loads everything the player needs for one course
	GetPlayer(ctx context.Context, p models.Principal, courseID string) (*PlayerView, error)

	// Neighbors resolves the leaves before and after contentID. An unknown
	// content id yields no neighbors rather than an error.
	Neighbors(ctx context.Context, p models.Principal, courseID, contentID string) (*Neighbors, error)
}

// PlayerView is the player payload for one user and course.
type PlayerView struct {
	Course    *course.Course  `json:"course"`
	Tree      *course.Tree    `json:"tree"`
	Completed []string        `json:"completed"` // content ids
	Progress  course.Progress `json:"progress"`
	Current   *course.Leaf    `json:"current"` // first incomplete leaf, null for an empty course
}

// Neighbors are the leaves adjacent to Current in document order.
type Neighbors struct {
	Current  *course.Leaf `json:"current"`
	Previous *course.Leaf `json:"previous"`
	Next     *course.Leaf `json:"next"`
}
