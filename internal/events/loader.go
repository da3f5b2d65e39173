package events

import "context"

// Token identifies one fetch. Responses carrying a stale token are dropped.
type Token uint64

// Loader issues request tokens. Starting a new request cancels the one in
// flight, so rapid reloads never race each other.
type Loader struct {
	gen    Token
	cancel context.CancelFunc
}

// Begin cancels any in-flight request and returns a token and context for a
// new one.
func (l *Loader) Begin(parent context.Context) (Token, context.Context) {
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.gen++
	l.cancel = cancel
	return l.gen, ctx
}

// Current reports whether t belongs to the latest request.
func (l *Loader) Current(t Token) bool {
	return t == l.gen && t != 0
}

// Finish releases the request's context if t is still current. It reports
// whether the response should be applied.
func (l *Loader) Finish(t Token) bool {
	if !l.Current(t) {
		return false
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	return true
}

// InFlight reports whether a request has begun but not finished.
func (l *Loader) InFlight() bool {
	return l.cancel != nil
}

// Cancel aborts the in-flight request, if any.
func (l *Loader) Cancel() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}
