package resources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/tourwise/cms-client/pkg/cache"
	"github.com/tourwise/cms-client/pkg/client"
	"github.com/tourwise/cms-client/pkg/logging"
)

// Resource type names used as the first half of every cache tag.
const (
	TypePost         = "post"
	TypeComment      = "comment"
	TypeHotel        = "hotel"
	TypeHeroSlide    = "hero_slide"
	TypeTag          = "tag"
	TypeEvent        = "event"
	TypeActivity     = "activity"
	TypeRegion       = "region"
	TypeView         = "view"
	TypeNotification = "notification"
)

// Page is the backend's pagination envelope.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// Query describes one cacheable read.
//
// Path and Params build the request from the arguments. Provides maps the
// decoded result and the arguments to the tags the cached entry answers for.
// Transform, when set, reshapes the result once before it is cached.
type Query[A, R any] struct {
	Name      string
	Path      func(args A) string
	Params    func(args A) url.Values
	Provides  func(result R, args A) []cache.Tag
	Transform func(result R) R
}

// Mutation describes one write and the cache entries it obsoletes.
//
// Invalidates maps the decoded result and the original arguments to the tags
// that could have changed. It runs only on success; a failed mutation never
// invalidates anything.
type Mutation[A, R any] struct {
	Name        string
	Method      string
	Path        func(args A) string
	Body        func(args A) interface{}
	Invalidates func(result R, args A) []cache.Tag
	Transform   func(result R) R
}

// API binds the HTTP client and the cache store and exposes one service per
// backend resource.
type API struct {
	client *client.Client
	store  *cache.Store
	logger zerolog.Logger

	Posts         *PostsService
	Comments      *CommentsService
	Hotels        *HotelsService
	HeroSlides    *HeroSlidesService
	Tags          *TagsService
	Events        *EventsService
	Activities    *ActivitiesService
	Regions       *RegionsService
	Views         *ViewsService
	Notifications *NotificationsService
}

// New creates the resource API on top of a client and a store.
func New(c *client.Client, store *cache.Store) *API {
	api := &API{
		client: c,
		store:  store,
		logger: logging.NewLogger("resources"),
	}
	api.Posts = &PostsService{api: api}
	api.Comments = &CommentsService{api: api}
	api.Hotels = &HotelsService{api: api}
	api.HeroSlides = &HeroSlidesService{api: api}
	api.Tags = &TagsService{api: api}
	api.Events = &EventsService{api: api}
	api.Activities = &ActivitiesService{api: api}
	api.Regions = &RegionsService{api: api}
	api.Views = &ViewsService{api: api}
	api.Notifications = &NotificationsService{api: api}
	return api
}

// scopeFor partitions the cache per principal without holding raw tokens in
// cache keys.
func scopeFor(token string) string {
	if token == "" {
		return "anon"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// signatureFor builds the canonical cache signature for a query invocation.
func signatureFor[A, R any](q Query[A, R], args A, token string) cache.Signature {
	var params url.Values
	if q.Params != nil {
		params = q.Params(args)
	}
	return cache.Signature{
		Endpoint: q.Path(args),
		Params:   params,
		Scope:    scopeFor(token),
	}
}

// RunQuery executes a query through the cache. A hit is served from the
// store; a miss or stale entry fetches from the backend, applies the
// transform, computes the provided tags and caches the end-user shaped
// result. When a refetch fails and a previous result exists, both the last
// good result and the error are returned.
func RunQuery[A, R any](ctx context.Context, api *API, q Query[A, R], args A, token string) (R, error) {
	var zero R
	sig := signatureFor(q, args, token)

	raw, err := api.store.Read(ctx, sig, func(ctx context.Context) (json.RawMessage, []cache.Tag, error) {
		resp, err := api.client.Get(ctx, q.Path(args), sig.Params, token)
		if err != nil {
			return nil, nil, err
		}

		var result R
		if !resp.NoContent {
			if err := resp.Decode(&result); err != nil {
				return nil, nil, err
			}
		}
		if q.Transform != nil {
			result = q.Transform(result)
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, nil, err
		}
		return data, q.Provides(result, args), nil
	})

	if raw == nil {
		return zero, err
	}

	var result R
	if decodeErr := cache.DecodeInto(raw, &result); decodeErr != nil {
		return zero, decodeErr
	}
	return result, err
}

// RunMutation executes a write against the backend. On success it computes
// the invalidated tags from the result and the arguments and marks every
// intersecting cache entry stale before returning, so a caller that awaits
// the mutation and immediately reads the cache never observes pre-mutation
// state.
func RunMutation[A, R any](ctx context.Context, api *API, m Mutation[A, R], args A, token string) (R, error) {
	var result R

	body := interface{}(nil)
	if m.Body != nil {
		body = m.Body(args)
	}

	resp, err := api.client.Do(ctx, client.Request{
		Method:       m.Method,
		Path:         m.Path(args),
		Body:         body,
		SessionToken: token,
	})
	if err != nil {
		return result, err
	}

	if !resp.NoContent {
		if err := resp.Decode(&result); err != nil {
			return result, err
		}
	}
	if m.Transform != nil {
		result = m.Transform(result)
	}

	if m.Invalidates != nil {
		tags := m.Invalidates(result, args)
		if len(tags) > 0 {
			marked := api.store.Invalidate(tags)
			api.logger.Debug().
				Str("mutation", m.Name).
				Int("tags", len(tags)).
				Int("entries_marked", marked).
				Msg("Mutation invalidated cache entries")
		}
	}

	return result, nil
}

// Subscribe registers interest in a query's cache entry. While at least one
// subscription is held, invalidations refetch the entry immediately and the
// janitor will not evict it. The returned release function is idempotent.
func Subscribe[A, R any](api *API, q Query[A, R], args A, token string) func() {
	return api.store.Subscribe(signatureFor(q, args, token))
}

// pageProvides returns the standard tags of a list entry: the collection
// sentinel plus one item tag per row, so the entry is invalidated both by
// collection-level and item-level writes.
func pageProvides[T any](resourceType string, page Page[T], id func(T) string) []cache.Tag {
	tags := make([]cache.Tag, 0, len(page.Data)+1)
	tags = append(tags, cache.ListTag(resourceType))
	for _, row := range page.Data {
		if rowID := id(row); rowID != "" {
			tags = append(tags, cache.ItemTag(resourceType, rowID))
		}
	}
	return tags
}

// detailProvides returns the tags of a get-by-id-or-slug entry: the argument
// as the caller gave it plus the canonical id and slug from the result, so a
// slug lookup is also invalidated by id-addressed writes and vice versa.
func detailProvides(resourceType, arg, id, slug string) []cache.Tag {
	tags := []cache.Tag{cache.ItemTag(resourceType, arg)}
	if id != "" && id != arg {
		tags = append(tags, cache.ItemTag(resourceType, id))
	}
	if slug != "" && slug != arg && slug != id {
		tags = append(tags, cache.ItemTag(resourceType, slug))
	}
	return tags
}

// itemWrites returns the standard invalidation set of an item-level write:
// the item as addressed, the result's slug when it differs, and the
// collection sentinel.
func itemWrites(resourceType, id, slug string) []cache.Tag {
	tags := []cache.Tag{cache.ItemTag(resourceType, id), cache.ListTag(resourceType)}
	if slug != "" && slug != id {
		tags = append(tags, cache.ItemTag(resourceType, slug))
	}
	return tags
}
