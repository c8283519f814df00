package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		input string
		ok    bool
	}{
		{"2026-03-14T10:00:00Z", true},
		{"2026-03-14", true},
		{"2026-03-14 10:00", true},
		{"2026-03-14 10:00:30", true},
		{"14/03/2026", false},
		{"not-a-date", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseDate(tc.input)
		if tc.ok {
			assert.NoError(t, err, tc.input)
		} else {
			assert.Error(t, err, tc.input)
		}
	}
}

func TestParseDateCalendarShorthand(t *testing.T) {
	parsed, err := ParseDate("2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
	assert.Equal(t, 14, parsed.Day())
}

func TestGenerateETag(t *testing.T) {
	id := primitive.NewObjectID()
	now := time.Now()

	etag := GenerateETag(id, now)
	assert.Equal(t, etag, GenerateETag(id, now))
	assert.NotEqual(t, etag, GenerateETag(id, now.Add(time.Second)))
	assert.NotEqual(t, etag, GenerateETag(primitive.NewObjectID(), now))

	// strong ETag, quoted
	assert.True(t, len(etag) > 2 && etag[0] == '"' && etag[len(etag)-1] == '"')
}

func TestExtractPublicID(t *testing.T) {
	cases := []struct {
		url    string
		want   string
		hasErr bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg", "events/abc123", false},
		{"https://res.cloudinary.com/demo/image/upload/events/abc123.png", "events/abc123", false},
		{"https://res.cloudinary.com/demo/image/upload/v1/events/nested/pic.webp", "events/nested/pic", false},
		{"https://res.cloudinary.com/short", "", true},
	}
	for _, tc := range cases {
		got, err := ExtractPublicID(tc.url)
		if tc.hasErr {
			assert.Error(t, err, tc.url)
			continue
		}
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.want, got, tc.url)
	}
}
