package services

import (
	"strings"

	"findsync/internal/models"
)

// NormalizePostType keeps "lost" and "found" and turns anything else into "lost".
func NormalizePostType(postType string) string {
	if postType == models.PostTypeLost || postType == models.PostTypeFound {
		return postType
	}
	return models.PostTypeLost
}

// IsValidPostType reports whether postType is one of the canonical values.
func IsValidPostType(postType string) bool {
	return postType == models.PostTypeLost || postType == models.PostTypeFound
}

// IsValidStatus reports whether status is open, matched or closed.
func IsValidStatus(status string) bool {
	switch status {
	case models.StatusOpen, models.StatusMatched, models.StatusClosed:
		return true
	}
	return false
}

func normalizeCategory(category string) string {
	if category = strings.TrimSpace(category); category == "" {
		return models.DefaultCategory
	}
	return category
}

// requiredMessage renders "x is required" or "x, y are required".
func requiredMessage(missing []string) string {
	if len(missing) == 1 {
		return missing[0] + " is required"
	}
	return strings.Join(missing, ", ") + " are required"
}

func optional(value string) *string {
	if value = strings.TrimSpace(value); value == "" {
		return nil
	}
	return &value
}
