package page

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const PageKey contextKey = "page"

var ErrNoPage = errors.New("page not found in context")

// Current retrieves the page the request originates from. Returns ErrNoPage if absent.
func Current(ctx context.Context) (Page, error) {
	p, ok := ctx.Value(PageKey).(Page)
	if !ok {
		log.Trace("page not found in context")
		return Default, ErrNoPage
	}
	return p, nil
}

func WithPage(ctx context.Context, p Page) context.Context {
	return context.WithValue(ctx, PageKey, p)
}
