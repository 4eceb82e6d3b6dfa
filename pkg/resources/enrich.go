package resources

// EnrichPost flattens a post's free-form content payload into the named
// fields and computes the views alias.
//
// Precedence, in order: an explicit column value wins, then the nested
// content value, then the zero default. The content payload itself stays on
// the post untouched. The transform is pure and idempotent: enriching an
// already enriched post changes nothing.
func EnrichPost(p Post) Post {
	if c := p.Content; c != nil {
		if p.Excerpt == "" {
			p.Excerpt = contentString(c, "excerpt")
		}
		if p.Body == "" {
			p.Body = contentString(c, "body")
		}
		if p.CoverImage == "" {
			p.CoverImage = contentString(c, "cover_image")
		}
		if p.Category == "" {
			p.Category = contentString(c, "category")
		}
		if len(p.Gallery) == 0 {
			p.Gallery = contentStrings(c, "gallery")
		}
	}

	if p.Views == 0 {
		p.Views = p.ViewCount
	}
	return p
}

// enrichPostPage applies EnrichPost to every row of a page.
func enrichPostPage(page Page[Post]) Page[Post] {
	for i := range page.Data {
		page.Data[i] = EnrichPost(page.Data[i])
	}
	return page
}

func contentString(c map[string]interface{}, key string) string {
	if s, ok := c[key].(string); ok {
		return s
	}
	return ""
}

func contentStrings(c map[string]interface{}, key string) []string {
	raw, ok := c[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
