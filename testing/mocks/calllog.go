package mocks

import "sync"

// MethodCall is one recorded invocation with its named arguments.
type MethodCall struct {
	Method string
	Args   map[string]any
}

// callLog records mock invocations. Every mock in this package embeds it,
// giving tests a uniform way to assert on what was called and with what.
type callLog struct {
	mu    sync.Mutex
	calls []MethodCall
}

// record appends one invocation.
func (l *callLog) record(method string, args map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, MethodCall{Method: method, Args: args})
}

// GetCalls returns a copy of every recorded invocation in order.
func (l *callLog) GetCalls() []MethodCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]MethodCall(nil), l.calls...)
}

// GetCallCount returns how many times the method was invoked.
func (l *callLog) GetCallCount(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, c := range l.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// GetLastCall returns the most recent invocation of the method, or nil
// when the method was never called.
func (l *callLog) GetLastCall(method string) *MethodCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.calls) - 1; i >= 0; i-- {
		if l.calls[i].Method == method {
			return &l.calls[i]
		}
	}
	return nil
}

// Reset drops every recorded invocation.
func (l *callLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}
