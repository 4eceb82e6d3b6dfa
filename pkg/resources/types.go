package resources

import (
	"net/url"
	"strconv"
	"time"
)

// Post is a blog or guide article. The backend stores free-form copy in
// Content; EnrichPost flattens the well-known keys into the named fields.
type Post struct {
	ID          string                 `json:"id"`
	Slug        string                 `json:"slug"`
	Title       string                 `json:"title"`
	Excerpt     string                 `json:"excerpt,omitempty"`
	Body        string                 `json:"body,omitempty"`
	CoverImage  string                 `json:"cover_image,omitempty"`
	Gallery     []string               `json:"gallery,omitempty"`
	Category    string                 `json:"category,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Status      string                 `json:"status"`
	AuthorName  string                 `json:"author_name,omitempty"`
	Featured    bool                   `json:"featured,omitempty"`
	ViewCount   int                    `json:"view_count"`
	Views       int                    `json:"views"`
	Content     map[string]interface{} `json:"content,omitempty"`
	PublishedAt *time.Time             `json:"published_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// PostInput is the create/update payload for posts.
type PostInput struct {
	Title      string                 `json:"title" validate:"required,max=200"`
	Slug       string                 `json:"slug,omitempty" validate:"omitempty,max=200"`
	Excerpt    string                 `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Body       string                 `json:"body,omitempty"`
	CoverImage string                 `json:"cover_image,omitempty"`
	Category   string                 `json:"category,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Status     string                 `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
	Featured   bool                   `json:"featured,omitempty"`
	Content    map[string]interface{} `json:"content,omitempty"`
}

// Comment statuses as the moderation queue knows them.
const (
	CommentPending  = "pending"
	CommentApproved = "approved"
	CommentRejected = "rejected"
	CommentSpam     = "spam"
)

// Comment is a visitor comment on a piece of content (post, hotel, event).
type Comment struct {
	ID          string    `json:"id"`
	TargetType  string    `json:"target_type"`
	TargetID    string    `json:"target_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email,omitempty"`
	Body        string    `json:"body"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CommentInput is the create payload for comments. New comments always enter
// the moderation queue as pending.
type CommentInput struct {
	TargetType  string `json:"target_type" validate:"required,oneof=post hotel event activity region"`
	TargetID    string `json:"target_id" validate:"required"`
	AuthorName  string `json:"author_name" validate:"required,max=100"`
	AuthorEmail string `json:"author_email,omitempty" validate:"omitempty,email"`
	Body        string `json:"body" validate:"required,max=2000"`
}

// Hotel is an accommodation listing.
type Hotel struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Region      string    `json:"region,omitempty"`
	Stars       int       `json:"stars,omitempty"`
	Address     string    `json:"address,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	Featured    bool      `json:"featured,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HotelInput is the create/update payload for hotels.
type HotelInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=200"`
	Description string `json:"description,omitempty"`
	Region      string `json:"region,omitempty"`
	Stars       int    `json:"stars,omitempty" validate:"omitempty,gte=1,lte=5"`
	Address     string `json:"address,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
	Featured    bool   `json:"featured,omitempty"`
}

// HeroSlide is one slide of the landing-page carousel.
type HeroSlide struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle,omitempty"`
	Image        string    `json:"image"`
	LinkURL      string    `json:"link_url,omitempty"`
	DisplayOrder int       `json:"display_order"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HeroSlideInput is the create/update payload for hero slides.
type HeroSlideInput struct {
	Title        string `json:"title" validate:"required,max=200"`
	Subtitle     string `json:"subtitle,omitempty" validate:"omitempty,max=300"`
	Image        string `json:"image" validate:"required"`
	LinkURL      string `json:"link_url,omitempty"`
	DisplayOrder int    `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	Active       *bool  `json:"active,omitempty"`
}

// Tag is an editorial label attached to posts and listings. Distinct from
// cache tags, which are invalidation keys.
type Tag struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagInput is the create/update payload for editorial tags.
type TagInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug,omitempty" validate:"omitempty,max=100"`
}

// Event is a scheduled happening (festival, market, exhibition).
type Event struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Region      string     `json:"region,omitempty"`
	Venue       string     `json:"venue,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventInput is the create/update payload for events.
type EventInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Slug        string     `json:"slug,omitempty" validate:"omitempty,max=200"`
	Description string     `json:"description,omitempty"`
	Region      string     `json:"region,omitempty"`
	Venue       string     `json:"venue,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// Activity is a bookable or recommended thing to do.
type Activity struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Region      string    `json:"region,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Price       float64   `json:"price,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActivityInput is the create/update payload for activities.
type ActivityInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Slug        string  `json:"slug,omitempty" validate:"omitempty,max=200"`
	Description string  `json:"description,omitempty"`
	Region      string  `json:"region,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Price       float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	CoverImage  string  `json:"cover_image,omitempty"`
}

// Region is a destination area grouping hotels, events and activities.
type Region struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RegionInput is the create/update payload for regions.
type RegionInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=200"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
}

// View is one recorded page view of a piece of content.
type View struct {
	ID         string    `json:"id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ViewInput records a page view.
type ViewInput struct {
	TargetType string `json:"target_type" validate:"required,oneof=post hotel event activity region"`
	TargetID   string `json:"target_id" validate:"required"`
}

// Notification is an editor-facing event (new pending comment, mention).
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// CountResult is the envelope for count endpoints.
type CountResult struct {
	Count int `json:"count"`
}

// BatchResult is the envelope for batch mutations.
type BatchResult struct {
	Affected int `json:"affected"`
}

// ListParams is the shared pagination block embedded by every list filter.
type ListParams struct {
	Page  int
	Limit int
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// PostListParams filters the post collection.
type PostListParams struct {
	ListParams
	Status   string
	Category string
	Tag      string
	Search   string
}

func (p PostListParams) values() url.Values {
	v := p.ListParams.values()
	setNonEmpty(v, "status", p.Status)
	setNonEmpty(v, "category", p.Category)
	setNonEmpty(v, "tag", p.Tag)
	setNonEmpty(v, "search", p.Search)
	return v
}

// CommentListParams filters the moderation queue.
type CommentListParams struct {
	ListParams
	Status string
}

func (p CommentListParams) values() url.Values {
	v := p.ListParams.values()
	setNonEmpty(v, "status", p.Status)
	return v
}

// ContentCommentsParams selects the approved comments of one piece of
// content.
type ContentCommentsParams struct {
	ListParams
	TargetType string
	TargetID   string
}

func (p ContentCommentsParams) values() url.Values {
	v := p.ListParams.values()
	setNonEmpty(v, "target_type", p.TargetType)
	setNonEmpty(v, "target_id", p.TargetID)
	return v
}

// HotelListParams filters the hotel collection.
type HotelListParams struct {
	ListParams
	Region string
	Stars  int
	Search string
}

func (p HotelListParams) values() url.Values {
	v := p.ListParams.values()
	setNonEmpty(v, "region", p.Region)
	if p.Stars > 0 {
		v.Set("stars", strconv.Itoa(p.Stars))
	}
	setNonEmpty(v, "search", p.Search)
	return v
}

// EventListParams filters the event collection.
type EventListParams struct {
	ListParams
	Region   string
	Upcoming bool
}

func (p EventListParams) values() url.Values {
	v := p.ListParams.values()
	setNonEmpty(v, "region", p.Region)
	if p.Upcoming {
		v.Set("upcoming", "true")
	}
	return v
}

// ActivityListParams filters the activity collection.
type ActivityListParams struct {
	ListParams
	Region string
	Search string
}

func (p ActivityListParams) values() url.Values {
	v := p.ListParams.values()
	setNonEmpty(v, "region", p.Region)
	setNonEmpty(v, "search", p.Search)
	return v
}

// ViewListParams filters recorded views.
type ViewListParams struct {
	ListParams
	TargetType string
	TargetID   string
}

func (p ViewListParams) values() url.Values {
	v := p.ListParams.values()
	setNonEmpty(v, "target_type", p.TargetType)
	setNonEmpty(v, "target_id", p.TargetID)
	return v
}

// NotificationListParams filters the notification feed.
type NotificationListParams struct {
	ListParams
	UnreadOnly bool
}

func (p NotificationListParams) values() url.Values {
	v := p.ListParams.values()
	if p.UnreadOnly {
		v.Set("unread", "true")
	}
	return v
}

func setNonEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
