// Package testutil provides hand-rolled fakes for the SDK's ports.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// RemoteCall records one invocation of the fake remote port.
type RemoteCall struct {
	Method string
	Path   string
	Body   interface{}
	Query  url.Values
}

// FakeRemote is a scripted implementation of the remote access port. Every
// call is recorded; responses are looked up by "METHOD path".
type FakeRemote struct {
	mu       sync.Mutex
	calls    []RemoteCall
	handlers map[string]func(RemoteCall) ([]byte, error)
}

// NewFakeRemote creates a fake with no scripted responses.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{handlers: make(map[string]func(RemoteCall) ([]byte, error))}
}

// Respond scripts a fixed JSON response for method and path.
func (f *FakeRemote) Respond(method, path, body string) {
	f.Handle(method, path, func(RemoteCall) ([]byte, error) {
		return []byte(body), nil
	})
}

// Fail scripts a fixed error for method and path.
func (f *FakeRemote) Fail(method, path string, err error) {
	f.Handle(method, path, func(RemoteCall) ([]byte, error) {
		return nil, err
	})
}

// Handle scripts an arbitrary handler for method and path.
func (f *FakeRemote) Handle(method, path string, fn func(RemoteCall) ([]byte, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = fn
}

// Do records the call and dispatches to the scripted handler.
func (f *FakeRemote) Do(_ context.Context, method, path string, body interface{}, query url.Values) ([]byte, error) {
	call := RemoteCall{Method: method, Path: path, Body: body, Query: query}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	fn := f.handlers[method+" "+path]
	f.mu.Unlock()

	if fn == nil {
		return nil, fmt.Errorf("unscripted call: %s %s", method, path)
	}
	return fn(call)
}

// Calls returns a copy of every recorded call.
func (f *FakeRemote) Calls() []RemoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RemoteCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many calls matched method and path.
func (f *FakeRemote) CallCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}
