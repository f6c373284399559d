package keys

import (
	"fmt"
	"strings"

	"cloudcollector/models"
)

const inventoryPrefix = "inventory"

var keyReplacer = strings.NewReplacer(" ", "-", "/", "-", "\\", "-")

// sanitizeKey lowercases s and replaces spaces and path separators with
// hyphens so every part stays a single key segment.
func sanitizeKey(s string) string {
	return strings.ToLower(keyReplacer.Replace(strings.TrimSpace(s)))
}

// Group returns the object key for one (service, region) group of a profile.
func Group(profile string, g models.Group) string {
	return fmt.Sprintf("%s/%s/%s/%s.json",
		inventoryPrefix,
		sanitizeKey(profile),
		sanitizeKey(g.Service),
		sanitizeKey(g.Region),
	)
}

// GroupRef is a parsed group key.
type GroupRef struct {
	Profile string
	Service string
	Region  string
}

// ParseGroup reverses Group. ok is false for keys outside the inventory
// layout.
func ParseGroup(key string) (GroupRef, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != inventoryPrefix || !strings.HasSuffix(parts[3], ".json") {
		return GroupRef{}, false
	}
	ref := GroupRef{Profile: parts[1], Service: parts[2], Region: strings.TrimSuffix(parts[3], ".json")}
	if ref.Profile == "" || ref.Service == "" || ref.Region == "" {
		return GroupRef{}, false
	}
	return ref, true
}

// Record returns the message key of one record.
func Record(r models.ResourceCollection) string {
	return r.Service + "/" + r.Region + "/" + r.ResourceType
}
