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
)

// likeTogglePipeline flips uid's membership in the likes set in one server-side
// update: present → removed, absent → appended. Running it as a pipeline keeps
// two concurrent togglers from clobbering each other's entries.
func likeTogglePipeline(uid primitive.ObjectID) mongo.Pipeline {
	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"likes": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{uid, likes}},
				bson.M{"$setDifference": bson.A{likes, bson.A{uid}}},
				bson.M{"$concatArrays": bson.A{likes, bson.A{uid}}},
			}},
			"updated_at": "$$NOW",
		}}},
	}
}

// ---------------- LIKE ----------------
func LikeEvent(cfg *config.Config) gin.HandlerFunc {
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

		var updated models.Event
		err = cfg.Events().
			FindOneAndUpdate(ctx,
				bson.M{"_id": eventID},
				likeTogglePipeline(user.ID),
				options.FindOneAndUpdate().SetReturnDocument(options.After)).
			Decode(&updated)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			log.Printf("like toggle failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update likes"})
			return
		}

		if err := enrichEvent(ctx, cfg, &updated); err != nil {
			log.Printf("like enrichment failed: %v", err)
		}

		c.JSON(http.StatusOK, updated)
	}
}

// ---------------- COMMENT ----------------
func CreateComment(cfg *config.Config) gin.HandlerFunc {
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

		// Content length and moderation are the client's concern here.
		var input struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		comment := models.Comment{
			ID:        primitive.NewObjectID(),
			UserID:    user.ID,
			Content:   input.Content,
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var updated models.Event
		err = cfg.Events().
			FindOneAndUpdate(ctx,
				bson.M{"_id": eventID},
				bson.M{
					"$push": bson.M{"comments": comment},
					"$set":  bson.M{"updated_at": time.Now()},
				},
				options.FindOneAndUpdate().SetReturnDocument(options.After)).
			Decode(&updated)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			log.Printf("comment append failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add comment"})
			return
		}

		if err := enrichEvent(ctx, cfg, &updated); err != nil {
			log.Printf("comment enrichment failed: %v", err)
		}

		c.JSON(http.StatusOK, updated)
	}
}
