// Package pipeline runs each HTTP request through an ordered list of stages.
//
// Every stage returns an Outcome: Continue passes the request on, Respond ends
// the run with a response, Fail hands an error to the ErrorHandler. Only the
// dispatcher writes to the client, so each request gets exactly one response.
// A run in which every stage continues is a defect and is answered with an
// internal error; a panicking stage is treated as Fail.
//
// chi does the routing. A route is registered with Handle, which prepends the
// pipeline's global and matching scoped stages to the route's own stages.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/observability"
)

var (
	errUnanswered  = errors.New("no stage produced a response")
	errNilResponse = errors.New("stage responded with a nil response")
	errNilError    = errors.New("stage failed with a nil error")
)

// Scope restricts stages to a path prefix and, optionally, to some methods.
// The prefix matches whole path segments: "/admin" matches "/admin" and
// "/admin/topsecret" but not "/administrator".
type Scope struct {
	Prefix  string
	Methods []string // empty means every method
}

func (s Scope) matches(r *http.Request) bool {
	path := r.URL.Path
	prefix := strings.TrimSuffix(s.Prefix, "/")
	if prefix != "" && path != prefix && !strings.HasPrefix(path, prefix+"/") {
		return false
	}
	return len(s.Methods) == 0 || slices.Contains(s.Methods, r.Method)
}

type registered struct {
	stage Stage
	scope *Scope
}

// Pipeline holds the stages that run ahead of every route.
type Pipeline struct {
	stages []registered
	errors *ErrorHandler
	logger *slog.Logger
}

// New creates an empty pipeline whose failures go to errs.
func New(errs *ErrorHandler, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{errors: errs, logger: logger}
}

// Use appends stages that run for every request.
func (p *Pipeline) Use(stages ...Stage) {
	for _, s := range stages {
		p.stages = append(p.stages, registered{stage: s})
	}
}

// UseScoped appends stages that only run for requests inside scope.
func (p *Pipeline) UseScoped(scope Scope, stages ...Stage) {
	for _, s := range stages {
		sc := scope
		p.stages = append(p.stages, registered{stage: s, scope: &sc})
	}
}

// Handle returns an http.Handler running the pipeline's stages followed by
// the route stages.
func (p *Pipeline) Handle(route ...Stage) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.serve(w, r, route)
	})
}

func (p *Pipeline) serve(w http.ResponseWriter, r *http.Request, route []Stage) {
	c := newContext(r)
	out, label := p.run(c, route)
	observability.PipelineOutcomesTotal.WithLabelValues(label).Inc()

	var resp Response
	switch out.kind {
	case respondKind:
		resp = out.resp
	case failKind:
		resp = p.errors.Handle(c, out.err)
	default:
		resp = p.errors.Handle(c, apperror.NewInternalError("request was not answered", errUnanswered))
	}

	for _, commit := range c.commits {
		if err := commit(w); err != nil {
			resp = p.errors.Handle(c, fmt.Errorf("committing request state: %w", err))
			break
		}
	}

	if err := resp.Write(w, r); err != nil {
		p.logger.ErrorContext(r.Context(), "failed to write response",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
}

// run executes the stages in order and stops at the first non-Continue outcome.
func (p *Pipeline) run(c *Context, route []Stage) (Outcome, string) {
	for _, reg := range p.stages {
		if reg.scope != nil && !reg.scope.matches(c.Request) {
			continue
		}
		if out, panicked := invoke(c, reg.stage); !out.IsContinue() {
			return out, label(out, panicked)
		}
	}
	for _, stage := range route {
		if out, panicked := invoke(c, stage); !out.IsContinue() {
			return out, label(out, panicked)
		}
	}
	return Continue(), "unanswered"
}

// invoke runs one stage, turning a panic into Fail.
func invoke(c *Context, stage Stage) (out Outcome, panicked bool) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
			out, panicked = Fail(apperror.NewInternalError("internal server error", err)), true
		}
	}()
	return stage(c), false
}

func label(o Outcome, panicked bool) string {
	switch {
	case panicked:
		return "panic"
	case o.kind == respondKind:
		return "respond"
	default:
		return "fail"
	}
}
