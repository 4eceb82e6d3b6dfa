package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tourwise/cms-client/pkg/cache"
)

func TestPostListProvides(t *testing.T) {
	page := Page[Post]{Data: []Post{{ID: "p1"}, {ID: "p2"}}}

	tags := postListQuery.Provides(page, PostListParams{})

	assert.ElementsMatch(t, []cache.Tag{
		cache.ListTag(TypePost),
		cache.ItemTag(TypePost, "p1"),
		cache.ItemTag(TypePost, "p2"),
	}, tags)
}

func TestPostListProvides_EmptyPage(t *testing.T) {
	tags := postListQuery.Provides(Page[Post]{}, PostListParams{})

	assert.Equal(t, []cache.Tag{cache.ListTag(TypePost)}, tags,
		"an empty list still answers for the collection sentinel")
}

func TestPostGetProvides_SlugLookup(t *testing.T) {
	post := Post{ID: "p1", Slug: "hidden-beaches"}

	tags := postGetQuery.Provides(post, "hidden-beaches")

	assert.ElementsMatch(t, []cache.Tag{
		cache.ItemTag(TypePost, "hidden-beaches"),
		cache.ItemTag(TypePost, "p1"),
	}, tags, "a slug lookup must also be addressable by id")
}

func TestPostGetProvides_IDLookup(t *testing.T) {
	post := Post{ID: "p1", Slug: "hidden-beaches"}

	tags := postGetQuery.Provides(post, "p1")

	assert.ElementsMatch(t, []cache.Tag{
		cache.ItemTag(TypePost, "p1"),
		cache.ItemTag(TypePost, "hidden-beaches"),
	}, tags)
}

func TestPostUpdateInvalidates(t *testing.T) {
	result := Post{ID: "p1", Slug: "hidden-beaches"}

	tags := postUpdateMutation.Invalidates(result, postUpdateArgs{ID: "p1"})

	assert.ElementsMatch(t, []cache.Tag{
		cache.ItemTag(TypePost, "p1"),
		cache.ItemTag(TypePost, "hidden-beaches"),
		cache.ListTag(TypePost),
	}, tags, "slug-keyed detail entries must be covered too")
}

func TestPostDeleteInvalidates(t *testing.T) {
	tags := postDeleteMutation.Invalidates(struct{}{}, "p1")

	assert.ElementsMatch(t, []cache.Tag{
		cache.ItemTag(TypePost, "p1"),
		cache.ListTag(TypePost),
	}, tags)
}

func TestPostCreateInvalidates(t *testing.T) {
	tags := postCreateMutation.Invalidates(Post{ID: "p9"}, PostInput{})

	assert.Equal(t, []cache.Tag{cache.ListTag(TypePost)}, tags,
		"a brand-new post can only affect collection views")
}

func TestPostPublishInvalidates(t *testing.T) {
	tags := postPublishMutation.Invalidates(Post{ID: "p1", Slug: "s"}, "p1")

	assert.Contains(t, tags, cache.ItemTag(TypePost, "p1"))
	assert.Contains(t, tags, cache.ItemTag(TypePost, "s"))
	assert.Contains(t, tags, cache.ListTag(TypePost))
}
