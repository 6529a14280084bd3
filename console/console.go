// Package console implements the submission behavior of one input form: each
// submission issues one request and overwrites a single display target with
// the result, a fallback message, or an error.
package console

import (
	"context"
	"errors"
	"sync"

	"github.com/a-h/jsonapi"
)

// ErrorMarker prefixes every error shown on the display target.
const ErrorMarker = "❌ "

// Display is the target whose text is overwritten by each submission.
type Display interface {
	Set(text string)
}

type DisplayFunc func(text string)

func (f DisplayFunc) Set(text string) { f(text) }

// NewQA returns a controller for question submissions.
func NewQA(display Display) *Controller {
	return New(display, "No answer found.", "Server error while getting answer.")
}

// NewSummary returns a controller for summary submissions.
func NewSummary(display Display) *Controller {
	return New(display, "No summary found.", "Server error while getting summary.")
}

func New(display Display, fallback, serverError string) *Controller {
	return &Controller{
		display:     display,
		fallback:    fallback,
		serverError: serverError,
	}
}

// Controller runs one form's submissions. Only one submission is active at a
// time: submitting again cancels the in-flight request's context, and a
// completion that is no longer current is discarded without touching the
// display, so the display always shows the latest submission's outcome.
type Controller struct {
	display     Display
	fallback    string
	serverError string

	mu         sync.Mutex
	generation int
	cancel     context.CancelFunc
}

// Submit runs one submission and writes its outcome to the display. It
// blocks until run returns; run callers that want concurrent submissions
// call Submit from their own goroutines.
func (c *Controller) Submit(ctx context.Context, run func(ctx context.Context) (text string, err error)) {
	ctx, generation := c.begin(ctx)
	text, err := run(ctx)
	c.complete(generation, text, err)
}

func (c *Controller) begin(ctx context.Context) (context.Context, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	ctx, c.cancel = context.WithCancel(ctx)
	return ctx, c.generation
}

func (c *Controller) complete(generation int, text string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		// A newer submission superseded this one.
		return
	}
	c.display.Set(c.render(text, err))
}

func (c *Controller) render(text string, err error) string {
	if err != nil {
		var statusErr jsonapi.InvalidStatusError
		if errors.As(err, &statusErr) {
			return ErrorMarker + c.serverError
		}
		return ErrorMarker + err.Error()
	}
	if text == "" {
		return c.fallback
	}
	return text
}
