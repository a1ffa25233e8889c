package model

// Profile is a user document keyed by the stable device identifier the
// registration lists reference.
type Profile struct {
	Base
	DeviceID             string `json:"device_id"`
	Name                 string `json:"name"`
	Email                string `json:"email,omitempty"`
	Phone                string `json:"phone,omitempty"`
	PictureURL           string `json:"picture_url,omitempty"`
	IsAdmin              bool   `json:"is_admin"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

func (p *Profile) Kind() string { return "profiles" }
