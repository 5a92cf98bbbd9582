// Package forum defines the forum client contract consumed by mention
// aggregation and discovery.
package forum

import (
	"context"
	"errors"
	"time"
)

// Failure signals a client must surface distinctly
var (
	ErrNotFound  = errors.New("forum not found")
	ErrForbidden = errors.New("forum access forbidden")
)

// TimeWindow selects the range of a "top" listing
type TimeWindow string

const (
	WindowHour  TimeWindow = "hour"
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

// AllForums is the pseudo-forum aggregating every public forum
const AllForums = "all"

// Post is one forum submission
type Post struct {
	ID          string    `json:"id"`
	Forum       string    `json:"forum"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment is one top-level reply
type Comment struct {
	Body  string `json:"body"`
	Score int    `json:"score"`
}

// Client yields posts and comments for a named forum.
// Implementations must be safe for concurrent use within one cycle.
type Client interface {
	ListHot(ctx context.Context, forum string, limit int) ([]Post, error)
	ListTop(ctx context.Context, forum string, limit int, window TimeWindow) ([]Post, error)
	Comments(ctx context.Context, post Post, limit int) ([]Comment, error)
}

// FailureKind labels err for logs and metrics
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}
