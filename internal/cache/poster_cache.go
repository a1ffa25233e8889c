package cache

import (
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"
)

// PosterCache tracks event poster images.
type PosterCache struct {
	*Manager[*model.Poster]
}

func NewPosterCache(writer Writer[*model.Poster]) *PosterCache {
	return &PosterCache{Manager: NewManager[*model.Poster](writer)}
}

func (c *PosterCache) GetPoster(id string) (*model.Poster, error) {
	poster, ok := c.GetByID(id)
	if !ok {
		return nil, apperrors.ErrPosterNotFound
	}
	return poster, nil
}

// ByEventID finds the poster attached to an event, if any.
func (c *PosterCache) ByEventID(eventID string) (*model.Poster, error) {
	matches := c.Filter(func(p *model.Poster) bool {
		return p.EventID == eventID
	})
	if len(matches) == 0 {
		return nil, apperrors.ErrPosterNotFound
	}
	return matches[0], nil
}
