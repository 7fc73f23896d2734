package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sydney-cole/oscars-ballot/internal/model"

	pkghttpx "github.com/sydney-cole/oscars-ballot/pkg/httpx"
)

const maxBodyBytes = 64 << 10

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) *pkghttpx.HTTPError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return pkghttpx.BadRequest("request body is required", err)
		}
		return pkghttpx.BadRequest("invalid json", err)
	}
	return nil
}

// serviceError maps domain errors to HTTP errors. The domain message is shown to the client.
func serviceError(err error, fallback string) *pkghttpx.HTTPError {
	msg := err.Error()
	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		return pkghttpx.Unauthorized(msg, err)
	case errors.Is(err, model.ErrUnauthorized):
		return pkghttpx.Forbidden(msg, err)
	case errors.Is(err, model.ErrNotFound):
		return pkghttpx.NotFound(msg, err)
	case errors.Is(err, model.ErrConflict):
		return pkghttpx.Conflict(msg, err)
	case errors.Is(err, model.ErrInvalidInput):
		return pkghttpx.BadRequest(msg, err)
	case errors.Is(err, model.ErrLocked):
		return pkghttpx.Locked(msg, err)
	default:
		return pkghttpx.Internal(fallback, err)
	}
}

func notMember() *pkghttpx.HTTPError {
	return pkghttpx.Forbidden("not a member of this group", model.ErrUnauthorized)
}
