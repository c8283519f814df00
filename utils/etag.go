package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag derives a strong ETag from a document's identity and its last
// modification time.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time) string {
	sum := sha1.Sum([]byte(id.Hex() + strconv.FormatInt(updatedAt.UnixNano(), 10)))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
