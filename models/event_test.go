package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUser(role Role, connections ...primitive.ObjectID) *User {
	return &User{
		ID:          primitive.NewObjectID(),
		Role:        role,
		Connections: connections,
	}
}

func TestFeedFilter_Individual(t *testing.T) {
	host := primitive.NewObjectID()
	viewer := newUser(RoleIndividual, host)

	filter := FeedFilter(viewer)

	require.Contains(t, filter, "host")
	require.Contains(t, filter, "eventType")
	assert.Equal(t, bson.M{"$in": viewer.Connections}, filter["host"])
	assert.Equal(t,
		bson.M{"$in": []EventType{EventNGOVolunteer, EventOrgIndividual}},
		filter["eventType"])
}

func TestFeedFilter_NGO(t *testing.T) {
	host := primitive.NewObjectID()
	viewer := newUser(RoleNGO, host)

	filter := FeedFilter(viewer)

	assert.Equal(t, bson.M{"$in": viewer.Connections}, filter["host"])
	assert.Equal(t, EventOrgNGO, filter["eventType"])
}

func TestFeedFilter_Organisation(t *testing.T) {
	viewer := newUser(RoleOrganisation)

	filter := FeedFilter(viewer)

	assert.Equal(t, bson.M{"host": viewer.ID}, filter)
}

func TestFeedFilter_UnknownRoleSeesEverything(t *testing.T) {
	viewer := newUser(Role("Admin"))

	assert.Equal(t, bson.M{}, FeedFilter(viewer))
}

func TestVisibleTo_Individual(t *testing.T) {
	host := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	viewer := newUser(RoleIndividual, host)

	cases := []struct {
		name    string
		event   Event
		visible bool
	}{
		{"connected volunteer event", Event{HostID: host, EventType: EventNGOVolunteer}, true},
		{"connected org-individual event", Event{HostID: host, EventType: EventOrgIndividual}, true},
		{"connected org-ngo event", Event{HostID: host, EventType: EventOrgNGO}, false},
		{"unconnected host", Event{HostID: stranger, EventType: EventNGOVolunteer}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.visible, tc.event.VisibleTo(viewer))
		})
	}
}

func TestVisibleTo_NGO(t *testing.T) {
	host := primitive.NewObjectID()
	viewer := newUser(RoleNGO, host)

	assert.True(t, (&Event{HostID: host, EventType: EventOrgNGO}).VisibleTo(viewer))
	assert.False(t, (&Event{HostID: host, EventType: EventNGOVolunteer}).VisibleTo(viewer))
	assert.False(t, (&Event{HostID: primitive.NewObjectID(), EventType: EventOrgNGO}).VisibleTo(viewer))
}

func TestVisibleTo_OrganisationSeesOnlyOwnEvents(t *testing.T) {
	viewer := newUser(RoleOrganisation)

	assert.True(t, (&Event{HostID: viewer.ID, EventType: EventOrgNGO}).VisibleTo(viewer))
	assert.False(t, (&Event{HostID: primitive.NewObjectID(), EventType: EventOrgNGO}).VisibleTo(viewer))
}

func TestApplicantRole(t *testing.T) {
	assert.Equal(t, RoleNGO, EventOrgNGO.ApplicantRole())
	assert.Equal(t, RoleIndividual, EventNGOVolunteer.ApplicantRole())
	assert.Equal(t, RoleIndividual, EventOrgIndividual.ApplicantRole())
	assert.Equal(t, Role(""), EventType("Other").ApplicantRole())
}

func TestEventTypeValid(t *testing.T) {
	assert.True(t, EventOrgNGO.Valid())
	assert.True(t, EventNGOVolunteer.Valid())
	assert.True(t, EventOrgIndividual.Valid())
	assert.False(t, EventType("Org-Org").Valid())
}

func TestStatusTransitions(t *testing.T) {
	assert.Equal(t, StatusOngoing, StatusUpcoming.Next())
	assert.Equal(t, StatusCompleted, StatusOngoing.Next())
	assert.Equal(t, EventStatus(""), StatusCompleted.Next())

	assert.True(t, StatusUpcoming.CanTransitionTo(StatusOngoing))
	assert.True(t, StatusOngoing.CanTransitionTo(StatusCompleted))

	// no skipping, no reversing, no self-loop
	assert.False(t, StatusUpcoming.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusOngoing.CanTransitionTo(StatusUpcoming))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusUpcoming))
	assert.False(t, StatusUpcoming.CanTransitionTo(StatusUpcoming))
	assert.False(t, StatusCompleted.CanTransitionTo(EventStatus("")))
}

func TestHasApplicantAndLikedBy(t *testing.T) {
	applicant := primitive.NewObjectID()
	fan := primitive.NewObjectID()
	event := &Event{
		Applicants: []primitive.ObjectID{applicant},
		Likes:      []primitive.ObjectID{fan},
	}

	assert.True(t, event.HasApplicant(applicant))
	assert.False(t, event.HasApplicant(fan))
	assert.True(t, event.LikedBy(fan))
	assert.False(t, event.LikedBy(applicant))
}

func TestCommentOrderIsNonDecreasing(t *testing.T) {
	base := time.Now()
	event := &Event{}
	for i := 0; i < 5; i++ {
		event.Comments = append(event.Comments, Comment{
			ID:        primitive.NewObjectID(),
			UserID:    primitive.NewObjectID(),
			Content:   "hello",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	for i := 1; i < len(event.Comments); i++ {
		assert.False(t, event.Comments[i].CreatedAt.Before(event.Comments[i-1].CreatedAt))
	}
}
