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

// ---------------- APPLY ----------------
func ApplyEvent(cfg *config.Config) gin.HandlerFunc {
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

		var event models.Event
		err = cfg.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			log.Printf("event fetch failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply"})
			return
		}

		if required := event.EventType.ApplicantRole(); user.Role != required {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "only " + string(required) + "s can apply for this event",
			})
			return
		}

		// Duplicate check and insert are one conditional update, so two racing
		// applications from the same caller cannot both land.
		res, err := cfg.Events().UpdateOne(ctx,
			bson.M{"_id": eventID, "applicants": bson.M{"$ne": user.ID}},
			bson.M{
				"$addToSet": bson.M{"applicants": user.ID},
				"$set":      bson.M{"updated_at": time.Now()},
			})
		if err != nil {
			log.Printf("apply update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply"})
			return
		}
		if res.ModifiedCount == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you have already applied for this event"})
			return
		}

		var updated models.Event
		if err := cfg.Events().FindOne(ctx, bson.M{"_id": eventID}).Decode(&updated); err != nil {
			log.Printf("apply reload failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply"})
			return
		}
		if err := enrichEvent(ctx, cfg, &updated); err != nil {
			log.Printf("apply enrichment failed: %v", err)
		}

		// Host notification is best-effort and never delays the response.
		go notifyHostOfApplication(cfg, &updated, user)

		c.JSON(http.StatusOK, gin.H{"message": "application successful", "event": updated})
	}
}

// ---------------- APPLICATIONS ----------------
func GetEventApplications(cfg *config.Config) gin.HandlerFunc {
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
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch applications"})
			return
		}

		if len(event.Applicants) == 0 {
			c.JSON(http.StatusOK, gin.H{"message": "no applicants for this event"})
			return
		}

		opts := options.Find().SetProjection(models.SummaryProjection())
		cursor, err := cfg.Users().Find(ctx, bson.M{"_id": bson.M{"$in": event.Applicants}}, opts)
		if err != nil {
			log.Printf("applicants query failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch applications"})
			return
		}

		applicants := []models.UserSummary{}
		if err := cursor.All(ctx, &applicants); err != nil {
			log.Printf("applicants decode failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch applications"})
			return
		}

		c.JSON(http.StatusOK, applicants)
	}
}

func notifyHostOfApplication(cfg *config.Config, event *models.Event, applicant *models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var host models.User
	if err := cfg.Users().FindOne(ctx, bson.M{"_id": event.HostID}).Decode(&host); err != nil {
		log.Printf("host lookup for notification failed: %v", err)
		return
	}

	subject := "New application for " + event.Title
	body := "<p>" + applicant.Name + " (" + string(applicant.Role) + ") applied to your event <b>" +
		event.Title + "</b>.</p>"
	if err := utils.SendEmail(cfg, host.Email, subject, body); err != nil {
		log.Printf("host notification failed: %v", err)
	}
}
