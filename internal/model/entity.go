package model

// Entity is implemented by every document persisted in a backend collection.
// The id is assigned by the store on the first successful create and is never
// reassigned afterwards.
type Entity interface {
	GetID() string
	SetID(id string)
	Kind() string
}

// Base carries the backend-assigned identifier shared by all entities.
type Base struct {
	ID string `json:"id"`
}

func (b *Base) GetID() string {
	return b.ID
}

// SetID assigns the id exactly once; later calls are ignored.
func (b *Base) SetID(id string) {
	if b.ID == "" {
		b.ID = id
	}
}

// Same reports whether two entities refer to the same document: same kind and
// the same non-empty id.
func Same(a, b Entity) bool {
	if a == nil || b == nil {
		return false
	}
	if a.GetID() == "" || b.GetID() == "" {
		return false
	}
	return a.Kind() == b.Kind() && a.GetID() == b.GetID()
}
