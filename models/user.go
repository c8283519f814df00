package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of actor kinds on the platform.
type Role string

const (
	RoleIndividual   Role = "Individual"
	RoleNGO          Role = "NGO"
	RoleOrganisation Role = "Organisation"
)

func (r Role) Valid() bool {
	switch r {
	case RoleIndividual, RoleNGO, RoleOrganisation:
		return true
	}
	return false
}

type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password,omitempty" json:"-"`
	ProfilePicture string               `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	Role           Role                 `bson:"role" json:"role"`
	Connections    []primitive.ObjectID `bson:"connections" json:"connections"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

// IsConnectedTo reports whether other is in the user's connection set.
func (u *User) IsConnectedTo(other primitive.ObjectID) bool {
	for _, id := range u.Connections {
		if id == other {
			return true
		}
	}
	return false
}

// UserSummary is the projection denormalized onto event reads
// (host, comment authors, applicants).
type UserSummary struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Username       string             `bson:"username" json:"username"`
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	Role           Role               `bson:"role" json:"role"`
}

// SummaryProjection limits user reads to the fields UserSummary carries.
func SummaryProjection() bson.M {
	return bson.M{"name": 1, "username": 1, "profilePicture": 1, "role": 1}
}
