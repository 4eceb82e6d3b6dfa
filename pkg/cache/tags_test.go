package cache

import "testing"

func TestTagConstructors(t *testing.T) {
	tests := []struct {
		name string
		tag  Tag
		want Tag
	}{
		{"item", ItemTag("post", "abc123"), Tag{Type: "post", ID: "abc123"}},
		{"list", ListTag("post"), Tag{Type: "post", ID: "LIST"}},
		{"moderation", ModerationTag("comment"), Tag{Type: "comment", ID: "MODERATION"}},
		{"pending_count", PendingCountTag("comment"), Tag{Type: "comment", ID: "PENDING_COUNT"}},
		{"unread_count", UnreadCountTag("notification"), Tag{Type: "notification", ID: "UNREAD_COUNT"}},
		{"content", ContentTag("comment", "post", "abc123"), Tag{Type: "comment", ID: "CONTENT-post-abc123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tag != tt.want {
				t.Errorf("got %v, want %v", tt.tag, tt.want)
			}
		})
	}
}

func TestTag_String(t *testing.T) {
	tag := ItemTag("hotel", "h-42")
	if tag.String() != "hotel:h-42" {
		t.Errorf("String() = %q, want %q", tag.String(), "hotel:h-42")
	}
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		a    []Tag
		b    []Tag
		want bool
	}{
		{
			name: "common item tag",
			a:    []Tag{ItemTag("post", "1"), ListTag("post")},
			b:    []Tag{ItemTag("post", "1")},
			want: true,
		},
		{
			name: "sentinel matches sentinel only",
			a:    []Tag{ListTag("post")},
			b:    []Tag{ListTag("comment")},
			want: false,
		},
		{
			name: "disjoint ids",
			a:    []Tag{ItemTag("post", "1")},
			b:    []Tag{ItemTag("post", "2")},
			want: false,
		},
		{
			name: "empty sets",
			a:    nil,
			b:    []Tag{ListTag("post")},
			want: false,
		},
		{
			name: "content tag",
			a:    []Tag{ContentTag("comment", "post", "abc123")},
			b:    []Tag{ContentTag("comment", "post", "abc123"), ModerationTag("comment")},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersects(tt.a, tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
}
