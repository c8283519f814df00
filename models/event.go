package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType differentiates who hosts an event and who may apply to it.
type EventType string

const (
	EventOrgNGO        EventType = "Org-NGO"
	EventNGOVolunteer  EventType = "NGO-Volunteer"
	EventOrgIndividual EventType = "Org-Individual"
)

func (t EventType) Valid() bool {
	switch t {
	case EventOrgNGO, EventNGOVolunteer, EventOrgIndividual:
		return true
	}
	return false
}

// ApplicantRole returns the one role eligible to apply for events of this type.
// For Org-Individual events, Individuals apply, mirroring the feed rule that
// shows those events to Individuals.
func (t EventType) ApplicantRole() Role {
	switch t {
	case EventOrgNGO:
		return RoleNGO
	case EventNGOVolunteer:
		return RoleIndividual
	case EventOrgIndividual:
		return RoleIndividual
	}
	return ""
}

// EventStatus is the linear lifecycle of an event.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "Upcoming"
	StatusOngoing   EventStatus = "Ongoing"
	StatusCompleted EventStatus = "Completed"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

// Next returns the only status reachable from s, or "" when s is terminal.
func (s EventStatus) Next() EventStatus {
	switch s {
	case StatusUpcoming:
		return StatusOngoing
	case StatusOngoing:
		return StatusCompleted
	}
	return ""
}

// CanTransitionTo reports whether a host may move an event from s to target.
// Transitions are strictly forward, one step at a time.
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	return target != "" && s.Next() == target
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	// Enriched fields
	User *UserSummary `bson:"-" json:"userInfo,omitempty"`
}

type Event struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	HostID      primitive.ObjectID   `bson:"host" json:"host"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	EventType   EventType            `bson:"eventType" json:"eventType"`
	Date        time.Time            `bson:"date" json:"date"`
	Location    string               `bson:"location" json:"location"`
	Image       string               `bson:"image,omitempty" json:"image,omitempty"`
	Status      EventStatus          `bson:"status" json:"status"`
	Applicants  []primitive.ObjectID `bson:"applicants" json:"applicants"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments    []Comment            `bson:"comments" json:"comments"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`

	// Enriched fields
	Host *UserSummary `bson:"-" json:"hostInfo,omitempty"`
}

// FeedFilter builds the events query for the viewer's role:
//
//	Individual   — events hosted by connections, NGO-Volunteer or Org-Individual
//	NGO          — events hosted by connections, Org-NGO only
//	Organisation — own events only
//
// Any other role falls through to the whole event set — an explicit default
// kept pending a product decision on unmatched roles.
func FeedFilter(viewer *User) bson.M {
	switch viewer.Role {
	case RoleIndividual:
		return bson.M{
			"host":      bson.M{"$in": viewer.Connections},
			"eventType": bson.M{"$in": []EventType{EventNGOVolunteer, EventOrgIndividual}},
		}
	case RoleNGO:
		return bson.M{
			"host":      bson.M{"$in": viewer.Connections},
			"eventType": EventOrgNGO,
		}
	case RoleOrganisation:
		return bson.M{"host": viewer.ID}
	default:
		return bson.M{}
	}
}

// VisibleTo reports whether the event would pass FeedFilter for the viewer.
func (e *Event) VisibleTo(viewer *User) bool {
	switch viewer.Role {
	case RoleIndividual:
		return viewer.IsConnectedTo(e.HostID) &&
			(e.EventType == EventNGOVolunteer || e.EventType == EventOrgIndividual)
	case RoleNGO:
		return viewer.IsConnectedTo(e.HostID) && e.EventType == EventOrgNGO
	case RoleOrganisation:
		return e.HostID == viewer.ID
	default:
		return true
	}
}

// HasApplicant reports whether uid already applied.
func (e *Event) HasApplicant(uid primitive.ObjectID) bool {
	for _, id := range e.Applicants {
		if id == uid {
			return true
		}
	}
	return false
}

// LikedBy reports whether uid currently likes the event.
func (e *Event) LikedBy(uid primitive.ObjectID) bool {
	for _, id := range e.Likes {
		if id == uid {
			return true
		}
	}
	return false
}
