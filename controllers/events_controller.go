package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/phillip/impact-connect-go/config"
	middleware "github.com/phillip/impact-connect-go/middleware"
	models "github.com/phillip/impact-connect-go/models"
	utils "github.com/phillip/impact-connect-go/utils"
)

// ---------------- FEED ----------------
func FeedEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.M{"created_at": -1})
		cursor, err := cfg.Events().Find(ctx, models.FeedFilter(user), opts)
		if err != nil {
			log.Printf("feed query failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		events := []models.Event{}
		if err := cursor.All(ctx, &events); err != nil {
			log.Printf("feed decode failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode events"})
			return
		}

		if err := attachUserSummaries(ctx, cfg, events); err != nil {
			log.Printf("feed enrichment failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		if len(events) == 0 {
			c.JSON(http.StatusOK, events)
			return
		}

		// --- ETag / Last-Modified from the newest event ---
		latest := events[0]
		for _, ev := range events {
			if ev.UpdatedAt.After(latest.UpdatedAt) {
				latest = ev
			}
		}
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// Hosting is reserved for NGOs and Organisations.
		if user.Role == models.RoleIndividual {
			c.JSON(http.StatusForbidden, gin.H{"error": "only NGOs and Organisations can host events"})
			return
		}

		var input struct {
			Title       string `json:"title" binding:"required"`
			Description string `json:"description" binding:"required"`
			EventType   string `json:"eventType" binding:"required"`
			Date        string `json:"date" binding:"required"`
			Location    string `json:"location" binding:"required"`
			Image       string `json:"image"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
			return
		}

		eventType := models.EventType(input.EventType)
		if !eventType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event type"})
			return
		}

		eventDate, err := utils.ParseDate(input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
			return
		}

		// --- Optional image: store via Cloudinary before persisting ---
		var imageURL string
		if input.Image != "" {
			imageURL, err = utils.UploadImage(cfg, input.Image)
			if err != nil {
				log.Printf("image upload failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
				return
			}
		}

		now := time.Now()
		event := models.Event{
			ID:          primitive.NewObjectID(),
			HostID:      user.ID, // host comes from caller identity, never from the payload
			Title:       input.Title,
			Description: input.Description,
			EventType:   eventType,
			Date:        eventDate,
			Location:    input.Location,
			Image:       imageURL,
			Status:      models.StatusUpcoming,
			Applicants:  []primitive.ObjectID{},
			Likes:       []primitive.ObjectID{},
			Comments:    []models.Comment{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := cfg.Events().InsertOne(ctx, event); err != nil {
			log.Printf("event insert failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
			return
		}

		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var event models.Event
		err = cfg.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			log.Printf("event fetch failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch event"})
			return
		}

		if err := enrichEvent(ctx, cfg, &event); err != nil {
			log.Printf("event enrichment failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch event"})
			return
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- MY EVENTS ----------------
func MyEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID, err := primitive.ObjectIDFromHex(c.Param("userId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.M{"created_at": -1})
		cursor, err := cfg.Events().Find(ctx, bson.M{"host": hostID}, opts)
		if err != nil {
			log.Printf("my-events query failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		events := []models.Event{}
		if err := cursor.All(ctx, &events); err != nil {
			log.Printf("my-events decode failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode events"})
			return
		}

		if err := attachUserSummaries(ctx, cfg, events); err != nil {
			log.Printf("my-events enrichment failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Event
		err = cfg.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&existing)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			log.Printf("event fetch failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete event"})
			return
		}

		if existing.HostID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "you are not authorized to delete this event"})
			return
		}

		// Host is immutable, so conditioning the delete on it keeps the
		// ownership check and the removal a single atomic operation.
		res, err := cfg.Events().DeleteOne(ctx, bson.M{"_id": eventID, "host": user.ID})
		if err != nil {
			log.Printf("event delete failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete event"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		// Image cleanup happens after the delete commits and never blocks it.
		if existing.Image != "" {
			go func(url string) {
				if err := utils.DeleteImage(cfg, url); err != nil {
					log.Printf("cloudinary cleanup failed for %s: %v", url, err)
				}
			}(existing.Image)
		}

		c.JSON(http.StatusOK, gin.H{"message": "event deleted successfully", "id": eventID.Hex()})
	}
}

// ---------------- STATUS ----------------
func UpdateEventStatus(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		target := models.EventStatus(input.Status)
		if !target.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		var from models.EventStatus
		switch target {
		case models.StatusOngoing:
			from = models.StatusUpcoming
		case models.StatusCompleted:
			from = models.StatusOngoing
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "events start as Upcoming and only move forward"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// The filter pins host and current status, so concurrent transitions
		// cannot skip a step or run backwards.
		update := bson.M{"$set": bson.M{"status": target, "updated_at": time.Now()}}
		var updated models.Event
		err = cfg.Events().
			FindOneAndUpdate(ctx,
				bson.M{"_id": eventID, "host": user.ID, "status": from},
				update,
				options.FindOneAndUpdate().SetReturnDocument(options.After)).
			Decode(&updated)
		if errors.Is(err, mongo.ErrNoDocuments) {
			statusUpdateFailure(c, cfg, eventID, user.ID)
			return
		}
		if err != nil {
			log.Printf("status update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// statusUpdateFailure disambiguates a missed conditional status update.
func statusUpdateFailure(c *gin.Context, cfg *config.Config, eventID, callerID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var event models.Event
	err := cfg.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	if err != nil {
		log.Printf("status lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
		return
	}
	if event.HostID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can update event status"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "invalid status transition from " + string(event.Status),
	})
}

// ---------------- ENRICHMENT ----------------

// attachUserSummaries batch-loads host and comment-author summaries for a
// slice of events in a single users query.
func attachUserSummaries(ctx context.Context, cfg *config.Config, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	idSet := map[primitive.ObjectID]struct{}{}
	for i := range events {
		idSet[events[i].HostID] = struct{}{}
		for j := range events[i].Comments {
			idSet[events[i].Comments[j].UserID] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	summaries, err := loadUserSummaries(ctx, cfg, ids)
	if err != nil {
		return err
	}

	for i := range events {
		if s, ok := summaries[events[i].HostID]; ok {
			events[i].Host = s
		}
		for j := range events[i].Comments {
			if s, ok := summaries[events[i].Comments[j].UserID]; ok {
				events[i].Comments[j].User = s
			}
		}
	}
	return nil
}

// enrichEvent attaches summaries to a single event in place.
func enrichEvent(ctx context.Context, cfg *config.Config, event *models.Event) error {
	events := []models.Event{*event}
	if err := attachUserSummaries(ctx, cfg, events); err != nil {
		return err
	}
	*event = events[0]
	return nil
}

func loadUserSummaries(ctx context.Context, cfg *config.Config, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	summaries := map[primitive.ObjectID]*models.UserSummary{}
	if len(ids) == 0 {
		return summaries, nil
	}

	opts := options.Find().SetProjection(models.SummaryProjection())
	cursor, err := cfg.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}

	var users []models.UserSummary
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		summaries[users[i].ID] = &users[i]
	}
	return summaries, nil
}
