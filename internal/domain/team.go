package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team is a photography crew assignable to photoshoot bookings.
type Team struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Members   []string  `bson:"members" json:"members"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
