package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/dto"
)

// Response is the success half of a handler result.
type Response struct {
	Status int
	Body   any
}

// OK wraps body in a 200 response
func OK(body any) Response {
	return Response{Status: http.StatusOK, Body: body}
}

// Created wraps body in a 201 response
func Created(body any) Response {
	return Response{Status: http.StatusCreated, Body: body}
}

// HandlerFunc returns either a success payload or an error. The HTTP status
// of a failure is derived from its apperr kind.
type HandlerFunc func(r *http.Request) (Response, error)

// Handle adapts h to a plain http.HandlerFunc.
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSONResponse(w, res.Status, res.Body)
	}
}

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError converts err into a JSON failure body. Untyped errors become
// a generic 500 and are logged; their details never reach the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.ErrInternal(err)
	}

	status := ae.Status()
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("code", ae.Code).
		Int("status", status).
		Msg("request failed")

	WriteJSONResponse(w, status, dto.ErrorResponse{
		Success: false,
		Message: ae.Message,
		Code:    ae.Code,
	})
}
