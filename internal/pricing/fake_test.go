package pricing

import (
	"context"
	"sync"
)

type fakeProvider struct {
	name string
	fn   func(ticker string) Result

	mu    sync.Mutex
	calls []string
}

func newFake(name string, fn func(ticker string) Result) *fakeProvider {
	return &fakeProvider{name: name, fn: fn}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FetchQuote(ctx context.Context, ticker string) Result {
	f.mu.Lock()
	f.calls = append(f.calls, ticker)
	f.mu.Unlock()
	return f.fn(ticker)
}

func (f *fakeProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func okPrice(cur, prev float64) func(string) Result {
	return func(string) Result {
		return OK(RawQuote{Current: cur, Previous: prev, HasPrevious: true, Volume: 1000})
	}
}

func always(r Result) func(string) Result {
	return func(string) Result { return r }
}
