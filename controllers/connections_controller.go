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

// Connections are symmetric. Both directions are written inside one session
// transaction so the relation can never end up half-formed.

// ---------------- CONNECT ----------------
func Connect(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateConnection(c, cfg, "$addToSet", "connection added")
	}
}

// ---------------- DISCONNECT ----------------
func Disconnect(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateConnection(c, cfg, "$pull", "connection removed")
	}
}

func updateConnection(c *gin.Context, cfg *config.Config, op, message string) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if targetID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot connect to yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = cfg.Users().FindOne(ctx, bson.M{"_id": targetID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		log.Printf("connection target lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update connection"})
		return
	}

	session, err := cfg.MongoClient.StartSession()
	if err != nil {
		log.Printf("session start failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update connection"})
		return
	}
	defer session.EndSession(ctx)

	now := time.Now()
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := cfg.Users().UpdateOne(sc,
			bson.M{"_id": user.ID},
			bson.M{op: bson.M{"connections": targetID}, "$set": bson.M{"updated_at": now}},
		); err != nil {
			return nil, err
		}
		if _, err := cfg.Users().UpdateOne(sc,
			bson.M{"_id": targetID},
			bson.M{op: bson.M{"connections": user.ID}, "$set": bson.M{"updated_at": now}},
		); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		log.Printf("connection transaction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update connection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "user": targetID.Hex()})
}

// ---------------- LIST ----------------
func ListConnections(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		connections := []models.UserSummary{}
		if len(user.Connections) > 0 {
			opts := options.Find().SetProjection(models.SummaryProjection())
			cursor, err := cfg.Users().Find(ctx, bson.M{"_id": bson.M{"$in": user.Connections}}, opts)
			if err != nil {
				log.Printf("connections query failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch connections"})
				return
			}
			if err := cursor.All(ctx, &connections); err != nil {
				log.Printf("connections decode failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch connections"})
				return
			}
		}

		c.JSON(http.StatusOK, connections)
	}
}
