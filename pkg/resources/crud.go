package resources

import (
	"net/http"
	"net/url"

	"github.com/tourwise/cms-client/pkg/cache"
)

// crudUpdateArgs addresses an update: which row, and the new payload.
type crudUpdateArgs[I any] struct {
	ID    string
	Input I
}

// crud bundles the descriptors shared by the plain collection resources
// (hotels, editorial tags, events, activities, regions). List queries stay
// per-resource because their filter parameters differ.
type crud[R, I any] struct {
	get    Query[string, R]
	create Mutation[I, R]
	update Mutation[crudUpdateArgs[I], R]
	remove Mutation[string, struct{}]
}

func newCRUD[R, I any](resourceType, basePath string, id, slug func(R) string) crud[R, I] {
	itemPath := func(arg string) string {
		return basePath + "/" + url.PathEscape(arg)
	}

	return crud[R, I]{
		get: Query[string, R]{
			Name: resourceType + ".get",
			Path: itemPath,
			Provides: func(r R, arg string) []cache.Tag {
				return detailProvides(resourceType, arg, id(r), slug(r))
			},
		},
		create: Mutation[I, R]{
			Name:   resourceType + ".create",
			Method: http.MethodPost,
			Path:   func(I) string { return basePath },
			Body:   func(in I) interface{} { return in },
			Invalidates: func(R, I) []cache.Tag {
				return []cache.Tag{cache.ListTag(resourceType)}
			},
		},
		update: Mutation[crudUpdateArgs[I], R]{
			Name:   resourceType + ".update",
			Method: http.MethodPut,
			Path:   func(a crudUpdateArgs[I]) string { return itemPath(a.ID) },
			Body:   func(a crudUpdateArgs[I]) interface{} { return a.Input },
			Invalidates: func(r R, a crudUpdateArgs[I]) []cache.Tag {
				return itemWrites(resourceType, a.ID, slug(r))
			},
		},
		remove: Mutation[string, struct{}]{
			Name:   resourceType + ".delete",
			Method: http.MethodDelete,
			Path:   itemPath,
			Invalidates: func(_ struct{}, arg string) []cache.Tag {
				return itemWrites(resourceType, arg, "")
			},
		},
	}
}
