package mock

import (
	"context"

	"github.com/clinscrape/clinscrape"
)

var _ clinscrape.Session = (*Session)(nil)

// Session is a mock implementation of clinscrape.Session.
type Session struct {
	HTMLFn     func(ctx context.Context) (string, error)
	InteractFn func(ctx context.Context, tried clinscrape.TriedSet) (string, error)
	CloseFn    func() error
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	return s.HTMLFn(ctx)
}

func (s *Session) Interact(ctx context.Context, tried clinscrape.TriedSet) (string, error) {
	return s.InteractFn(ctx, tried)
}

func (s *Session) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

var _ clinscrape.SessionOpener = (*SessionOpener)(nil)

// SessionOpener is a mock implementation of clinscrape.SessionOpener.
type SessionOpener struct {
	OpenFn  func(ctx context.Context, url string, cfg *clinscrape.SPAConfig) (clinscrape.Session, error)
	CloseFn func() error
}

func (o *SessionOpener) Open(ctx context.Context, url string, cfg *clinscrape.SPAConfig) (clinscrape.Session, error) {
	return o.OpenFn(ctx, url, cfg)
}

func (o *SessionOpener) Close() error {
	if o.CloseFn == nil {
		return nil
	}
	return o.CloseFn()
}
