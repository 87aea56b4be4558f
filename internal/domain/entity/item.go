package entity

import "time"

type GeoPoint struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

type Item struct {
	ID          string    `json:"id" firestore:"-"`
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"desc" firestore:"desc"`
	Image       string    `json:"image" firestore:"image"`
	Category    string    `json:"category" firestore:"category"`
	Region      string    `json:"region,omitempty" firestore:"region,omitempty"`
	Address     string    `json:"address,omitempty" firestore:"address,omitempty"`
	Location    *GeoPoint `json:"location,omitempty" firestore:"location,omitempty"`
	Featured    bool      `json:"featured" firestore:"featured"`
	UserID      string    `json:"user_id" firestore:"userId"`
	UserName    string    `json:"user_name" firestore:"userName"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

// Snapshot copies the item into an immutable value for embedding in a trade
// request. Later edits to the item do not reach the copy.
func (i *Item) Snapshot() ItemSnapshot {
	s := ItemSnapshot{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Image:       i.Image,
		Category:    i.Category,
		Region:      i.Region,
		Address:     i.Address,
		Featured:    i.Featured,
		UserID:      i.UserID,
		UserName:    i.UserName,
		CreatedAt:   i.CreatedAt,
	}
	if i.Location != nil {
		loc := *i.Location
		s.Location = &loc
	}
	return s
}

// ItemSnapshot is the denormalized copy of an Item stored inside a trade
// request.
type ItemSnapshot struct {
	ID          string    `json:"id" firestore:"id"`
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"desc" firestore:"desc"`
	Image       string    `json:"image" firestore:"image"`
	Category    string    `json:"category" firestore:"category"`
	Region      string    `json:"region,omitempty" firestore:"region,omitempty"`
	Address     string    `json:"address,omitempty" firestore:"address,omitempty"`
	Location    *GeoPoint `json:"location,omitempty" firestore:"location,omitempty"`
	Featured    bool      `json:"featured" firestore:"featured"`
	UserID      string    `json:"user_id" firestore:"userId"`
	UserName    string    `json:"user_name" firestore:"userName"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}
