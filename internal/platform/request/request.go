// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and body
decoding, so handlers hand a uniform [validate.Input] to the services.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gazette/internal/platform/apperr"
	"github.com/taibuivan/gazette/internal/platform/constants"
	"github.com/taibuivan/gazette/internal/platform/ctxutil"
	"github.com/taibuivan/gazette/internal/platform/middleware"
	"github.com/taibuivan/gazette/internal/platform/sec"
	"github.com/taibuivan/gazette/internal/platform/validate"
)

/*
Payload flattens the query string and the request body into a [validate.Input].

Body fields override query fields of the same name. JSON numbers and booleans
are kept in their literal form; null, objects and arrays are dropped since no
validated field is structured.

Returns:
  - validate.Input: fields plus the client address
  - error: validate.ErrInvalidJSON if the body cannot be decoded
*/
func Payload(request *http.Request) (validate.Input, error) {
	fields := make(map[string]string)
	for name, values := range request.URL.Query() {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}

	input := validate.Input{Fields: fields, RemoteIP: middleware.RealIP(request)}
	if request.Body == nil || request.Method == http.MethodGet {
		return input, nil
	}

	mediaType, _, _ := mime.ParseMediaType(request.Header.Get(constants.HeaderContentType))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		request.Body = http.MaxBytesReader(nil, request.Body, constants.MaxPayloadBytes)
		if err := parseForm(request, mediaType); err != nil {
			return input, validate.ErrInvalidJSON
		}
		for name, values := range request.PostForm {
			if len(values) > 0 {
				fields[name] = values[0]
			}
		}
		return input, nil
	}

	if err := decodeJSONFields(io.LimitReader(request.Body, constants.MaxPayloadBytes), fields); err != nil {
		return input, err
	}
	return input, nil
}

// parseForm fills request.PostForm; multipart values land there too.
func parseForm(request *http.Request, mediaType string) error {
	if mediaType == "multipart/form-data" {
		return request.ParseMultipartForm(constants.MaxPayloadBytes)
	}
	return request.ParseForm()
}

func decodeJSONFields(body io.Reader, fields map[string]string) error {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}

	for name, value := range raw {
		switch typed := value.(type) {
		case string:
			fields[name] = typed
		case json.Number:
			fields[name] = typed.String()
		case bool:
			fields[name] = strconv.FormatBool(typed)
		}
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredClaims ensures the request is authenticated and returns the session claims.

Returns:
  - *sec.SessionClaims: the caller's claims
  - error: apperr.Unauthorized if the caller is a guest
*/
func RequiredClaims(request *http.Request) (*sec.SessionClaims, error) {
	claims := ctxutil.GetSession(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
