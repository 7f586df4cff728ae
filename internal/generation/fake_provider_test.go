package generation

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// fakeResponse is one scripted provider reply.
type fakeResponse struct {
	raw string
	err error
}

// fakeProvider replays scripted responses and records every call. Once the
// script is exhausted the last response is repeated.
type fakeProvider struct {
	name string
	// kinds limits Supports; nil supports every kind.
	kinds     map[ArtifactKind]bool
	responses []fakeResponse

	mu    sync.Mutex
	calls []Call
}

func newFakeProvider(name string, responses ...fakeResponse) *fakeProvider {
	return &fakeProvider{name: name, responses: responses}
}

func (f *fakeProvider) Name() string {
	return f.name
}

func (f *fakeProvider) Supports(kind ArtifactKind) bool {
	return f.kinds == nil || f.kinds[kind]
}

func (f *fakeProvider) Generate(ctx context.Context, call Call) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	idx := len(f.calls) - 1
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	r := f.responses[idx]
	return r.raw, r.err
}

func (f *fakeProvider) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(providers ...Provider) *Service {
	svc, err := NewService(NewRouter(providers...), discardLogger(), DefaultOptions())
	if err != nil {
		panic(err)
	}
	return svc
}
