package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a new 24-character hex object id.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsID reports whether s has the shape of an object id (24 hex characters).
// Anything else reaching a lookup is treated as a slug.
func IsID(s string) bool {
	return primitive.IsValidObjectID(s)
}
