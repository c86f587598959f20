package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NexoraPanel/models"
	"NexoraPanel/publishers"
)

type posterCall struct {
	Kind    string
	PageID  string
	Token   string
	Message string
	Link    string
	Path    string
	Mime    string
}

type fakePoster struct {
	mu        sync.Mutex
	calls     []posterCall
	failPages map[string]bool
}

func newFakePoster() *fakePoster {
	return &fakePoster{failPages: map[string]bool{}}
}

func (f *fakePoster) record(call posterCall) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failPages[call.PageID] {
		return "", &publishers.DeliveryError{StatusCode: 400, Body: `{"error":{"message":"boom"}}`}
	}
	return fmt.Sprintf("%s_%d", call.PageID, len(f.calls)), nil
}

func (f *fakePoster) PostText(_ context.Context, pageID, pageToken, message, link string) (string, error) {
	return f.record(posterCall{Kind: "text", PageID: pageID, Token: pageToken, Message: message, Link: link})
}

func (f *fakePoster) PostPhoto(_ context.Context, photo publishers.Photo) (string, error) {
	return f.record(posterCall{
		Kind:    "photo",
		PageID:  photo.PageID,
		Token:   photo.PageToken,
		Message: photo.Message,
		Path:    photo.Path,
		Mime:    photo.MimeType,
	})
}

func (f *fakePoster) Calls() []posterCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]posterCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeResolver struct {
	mu     sync.Mutex
	pages  map[string]models.Page
	err    error
	tokens []string
}

func (f *fakeResolver) ResolvePages(_ context.Context, userToken string) (map[string]models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, userToken)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitRecorder) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()
	return ctx.Err()
}

func (w *waitRecorder) Waits() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]time.Duration, len(w.waits))
	copy(out, w.waits)
	return out
}

// pngHeader is enough of a PNG for magic-number detection.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
