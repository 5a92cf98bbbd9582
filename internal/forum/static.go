package forum

import (
	"context"
	"fmt"
	"sync"
)

// Static is an in-memory Client serving fixed posts. Used offline and in tests.
type Static struct {
	mu       sync.Mutex
	hot      map[string][]Post
	top      map[string][]Post
	comments map[string][]Comment
	errs     map[string]error
	calls    map[string]int
}

// NewStatic creates an empty Static client
func NewStatic() *Static {
	return &Static{
		hot:      map[string][]Post{},
		top:      map[string][]Post{},
		comments: map[string][]Comment{},
		errs:     map[string]error{},
		calls:    map[string]int{},
	}
}

// AddHot appends posts to forum's hot listing
func (s *Static) AddHot(forum string, posts ...Post) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range posts {
		if posts[i].Forum == "" {
			posts[i].Forum = forum
		}
		if posts[i].ID == "" {
			posts[i].ID = fmt.Sprintf("%s-%d", forum, len(s.hot[forum])+i)
		}
	}
	s.hot[forum] = append(s.hot[forum], posts...)
	return s
}

// AddTop appends posts to forum's top listing
func (s *Static) AddTop(forum string, posts ...Post) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.top[forum] = append(s.top[forum], posts...)
	return s
}

// AddComments attaches comments to a post id
func (s *Static) AddComments(postID string, comments ...Comment) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[postID] = append(s.comments[postID], comments...)
	return s
}

// FailForum makes every call for forum return err
func (s *Static) FailForum(forum string, err error) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[forum] = err
	return s
}

// Calls returns how many listing calls hit forum
func (s *Static) Calls(forum string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[forum]
}

func (s *Static) ListHot(ctx context.Context, forum string, limit int) ([]Post, error) {
	return s.list(ctx, s.hot, forum, limit)
}

func (s *Static) ListTop(ctx context.Context, forum string, limit int, _ TimeWindow) ([]Post, error) {
	return s.list(ctx, s.top, forum, limit)
}

func (s *Static) Comments(ctx context.Context, post Post, limit int) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.comments[post.ID]
	if limit >= 0 && len(cs) > limit {
		cs = cs[:limit]
	}
	return append([]Comment(nil), cs...), nil
}

func (s *Static) list(ctx context.Context, src map[string][]Post, forum string, limit int) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[forum]++
	if err := s.errs[forum]; err != nil {
		return nil, err
	}
	posts := src[forum]
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return append([]Post(nil), posts...), nil
}
