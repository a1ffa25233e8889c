package model

// Poster holds the uploaded image attached to an event. Deleting a poster
// cascades: the referencing event's poster field is cleared and re-persisted.
type Poster struct {
	Base
	EventID  string `json:"event_id"`
	ImageURL string `json:"image_url"`
}

func (p *Poster) Kind() string { return "posters" }
