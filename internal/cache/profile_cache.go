package cache

import (
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"
)

// ProfileCache resolves device identifiers to profiles.
type ProfileCache struct {
	*Manager[*model.Profile]
}

func NewProfileCache(writer Writer[*model.Profile]) *ProfileCache {
	return &ProfileCache{Manager: NewManager[*model.Profile](writer)}
}

func (c *ProfileCache) GetProfile(id string) (*model.Profile, error) {
	profile, ok := c.GetByID(id)
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	return profile, nil
}

// ByDeviceID finds the profile owning a device identifier.
func (c *ProfileCache) ByDeviceID(deviceID string) (*model.Profile, error) {
	matches := c.Filter(func(p *model.Profile) bool {
		return p.DeviceID == deviceID
	})
	if len(matches) == 0 {
		return nil, apperrors.ErrProfileNotFound
	}
	return matches[0], nil
}

// Admins returns every profile flagged as an administrator.
func (c *ProfileCache) Admins() []*model.Profile {
	return c.Filter(func(p *model.Profile) bool {
		return p.IsAdmin
	})
}
