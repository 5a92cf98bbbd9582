package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/memestock/internal/forum"
)

// Reddit caps listing pages at 100 items
const maxPageSize = 100

// ListHot returns up to limit "hot" posts of a subreddit
func (c *Client) ListHot(ctx context.Context, subreddit string, limit int) ([]forum.Post, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	params.Set("raw_json", "1")

	var l listing
	if err := c.getJSON(ctx, "/r/"+url.PathEscape(subreddit)+"/hot", params, &l); err != nil {
		return nil, err
	}
	return c.parsePosts(l, limit), nil
}

// ListTop returns up to limit "top" posts over window
func (c *Client) ListTop(ctx context.Context, subreddit string, limit int, window forum.TimeWindow) ([]forum.Post, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	params.Set("t", string(window))
	params.Set("raw_json", "1")

	var l listing
	if err := c.getJSON(ctx, "/r/"+url.PathEscape(subreddit)+"/top", params, &l); err != nil {
		return nil, err
	}
	return c.parsePosts(l, limit), nil
}

// Comments returns up to limit top-level comments of post, best first
func (c *Client) Comments(ctx context.Context, post forum.Post, limit int) ([]forum.Comment, error) {
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("depth", "1")
	params.Set("sort", "top")
	params.Set("raw_json", "1")

	path := fmt.Sprintf("/r/%s/comments/%s", url.PathEscape(post.Forum), url.PathEscape(post.ID))

	// response is [post listing, comment listing]
	var pages []listing
	if err := c.getJSON(ctx, path, params, &pages); err != nil {
		return nil, err
	}
	if len(pages) < 2 {
		return nil, nil
	}

	out := make([]forum.Comment, 0, limit)
	for _, child := range pages[1].Data.Children {
		if child.Kind != kindComment {
			continue // "more" stubs
		}
		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil {
			c.logger.WithError(err).Debug("Skipping undecodable comment")
			continue
		}
		body := cd.Body
		if body == "" {
			body = htmlToText(cd.BodyHTML)
		}
		out = append(out, forum.Comment{Body: body, Score: cd.Score})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (c *Client) parsePosts(l listing, limit int) []forum.Post {
	posts := make([]forum.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != kindLink {
			continue
		}
		var ld linkData
		if err := json.Unmarshal(child.Data, &ld); err != nil {
			c.logger.WithError(err).Debug("Skipping undecodable post")
			continue
		}

		body := ld.Selftext
		if body == "" && ld.SelftextHTML != "" {
			body = htmlToText(ld.SelftextHTML)
		}

		posts = append(posts, forum.Post{
			ID:          ld.ID,
			Forum:       ld.Subreddit,
			Title:       ld.Title,
			Body:        body,
			Score:       ld.Score,
			NumComments: ld.NumComments,
			CreatedAt:   time.Unix(int64(ld.CreatedUTC), 0).UTC(),
		})
		if limit > 0 && len(posts) >= limit {
			break
		}
	}
	return posts
}

// htmlToText flattens Reddit's rendered markdown to plain text
func htmlToText(s string) string {
	if s == "" {
		return ""
	}
	// without raw_json Reddit double-escapes the html fields
	s = html.UnescapeString(s)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
