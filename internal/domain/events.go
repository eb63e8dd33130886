package domain

const (
	EventSweetAdded   = "sweetAdded"
	EventSweetUpdated = "sweetUpdated"
	EventSweetDeleted = "sweetDeleted"
)

// CatalogEvent is broadcast to connected storefronts after a catalog change.
// Payload is the sweet for added/updated and its id for deleted.
type CatalogEvent struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}
