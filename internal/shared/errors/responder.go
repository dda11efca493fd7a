package errors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper maps domain/application errors to ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes Problem Details responses. Mappers are tried in order; an error
// none of them recognises becomes a generic 500 and its cause is only logged.
type Responder struct {
	// BaseURI is prepended to problem type URIs if they are relative.
	BaseURI string
	logger  *slog.Logger
	mappers []ErrorMapper
}

// NewResponder creates a responder with optional base URI and error mappers.
func NewResponder(baseURI string, logger *slog.Logger, mappers ...ErrorMapper) *Responder {
	return &Responder{BaseURI: baseURI, logger: logger, mappers: mappers}
}

// Respond sends a ProblemDetail response with proper content type.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem = problem.WithInstance(c.Request.URL.Path)
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err and responds.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	if r.logger != nil {
		r.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("http.method", c.Request.Method),
			slog.String("http.path", c.Request.URL.Path),
			slog.String("error", err.Error()))
	}
	r.Respond(c, ErrInternal)
}

// BadRequest sends a 400 problem response.
func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}
