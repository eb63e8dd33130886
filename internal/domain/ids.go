package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func NewID() string {
	return primitive.NewObjectID().Hex()
}

// NormalizeID returns the canonical lower-case hex form of anything that parses
// as a 24-hex ObjectID. Every other string is returned unchanged.
func NormalizeID(s string) string {
	if len(s) != 24 {
		return s
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return s
	}
	return oid.Hex()
}

func IsObjectID(s string) bool {
	return primitive.IsValidObjectID(strings.TrimSpace(s))
}
