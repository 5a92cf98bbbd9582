package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/memestock/pkg/httputil"
	"github.com/wonny/memestock/pkg/logger"
)

// Example_basic demonstrates basic HTTP client usage
func Example_basic() {
	client := httputil.NewWithTimeout(logger.Nop(), 10*time.Second).
		WithRateLimit(2, 4).
		WithUserAgent("memestock:insight:v1.0")

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), "https://api.example.com/data", nil, &out)
	if code := httputil.StatusCode(err); code == 429 {
		fmt.Println("rate limited")
	}
}
