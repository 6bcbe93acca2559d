package pipeline

// outcomeKind is what a stage decided.
type outcomeKind int

const (
	continueKind outcomeKind = iota
	respondKind
	failKind
)

// Outcome is the value every Stage returns. It is exactly one of Continue,
// Respond(response) or Fail(err); the zero Outcome is Continue.
type Outcome struct {
	kind outcomeKind
	resp Response
	err  error
}

// Continue hands the request to the next stage.
func Continue() Outcome { return Outcome{kind: continueKind} }

// Respond ends the pipeline with r. A nil response is treated as a failure,
// since it would leave the request unanswered.
func Respond(r Response) Outcome {
	if r == nil {
		return Fail(errNilResponse)
	}
	return Outcome{kind: respondKind, resp: r}
}

// Fail diverts the request to the error handler.
func Fail(err error) Outcome {
	if err == nil {
		err = errNilError
	}
	return Outcome{kind: failKind, err: err}
}

// IsContinue reports whether o hands off to the next stage.
func (o Outcome) IsContinue() bool { return o.kind == continueKind }

// Response returns the response of a Respond outcome, or nil.
func (o Outcome) Response() Response { return o.resp }

// Err returns the error of a Fail outcome, or nil.
func (o Outcome) Err() error { return o.err }

// Stage is one step of a request pipeline.
type Stage func(c *Context) Outcome

// HandlerFunc adapts a terminal handler that either responds or fails.
// Resource handlers are written this way so they cannot forget to answer.
func HandlerFunc(fn func(c *Context) (Response, error)) Stage {
	return func(c *Context) Outcome {
		resp, err := fn(c)
		if err != nil {
			return Fail(err)
		}
		return Respond(resp)
	}
}
