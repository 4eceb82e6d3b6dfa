package cache

import "fmt"

// Sentinel tag ids. A sentinel addresses a whole collection rather than a
// single item, e.g. (post, LIST) covers every cached post list.
const (
	SentinelList         = "LIST"
	SentinelModeration   = "MODERATION"
	SentinelPendingCount = "PENDING_COUNT"
	SentinelUnreadCount  = "UNREAD_COUNT"
)

// Tag is the unit of invalidation: an opaque (type, id) pair where id is
// either a concrete resource identifier or one of the sentinel ids above.
// Tags carry no payload.
type Tag struct {
	// Type is the resource type the tag belongs to (e.g. "post", "comment").
	Type string

	// ID is a resource identifier or a sentinel id.
	ID string
}

// String renders the tag as "type:id" for logging and metrics.
func (t Tag) String() string {
	return t.Type + ":" + t.ID
}

// ItemTag addresses one item of a resource type.
func ItemTag(resourceType, id string) Tag {
	return Tag{Type: resourceType, ID: id}
}

// ListTag addresses every cached list of a resource type.
func ListTag(resourceType string) Tag {
	return Tag{Type: resourceType, ID: SentinelList}
}

// ModerationTag addresses the moderation views of a resource type.
func ModerationTag(resourceType string) Tag {
	return Tag{Type: resourceType, ID: SentinelModeration}
}

// PendingCountTag addresses the pending-item counter of a resource type.
func PendingCountTag(resourceType string) Tag {
	return Tag{Type: resourceType, ID: SentinelPendingCount}
}

// UnreadCountTag addresses the unread counter of a resource type.
func UnreadCountTag(resourceType string) Tag {
	return Tag{Type: resourceType, ID: SentinelUnreadCount}
}

// ContentTag addresses the cached public lists of resourceType that belong to
// one piece of target content, e.g. the approved comments of post "abc123"
// yield (comment, CONTENT-post-abc123). Approving a comment invalidates this
// tag so open comment lists for that post refetch, while creating a pending
// comment does not, because pending comments are not publicly visible.
func ContentTag(resourceType, targetType, targetID string) Tag {
	return Tag{Type: resourceType, ID: fmt.Sprintf("CONTENT-%s-%s", targetType, targetID)}
}

// Intersects reports whether any tag in a also appears in b.
func Intersects(a, b []Tag) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[Tag]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
