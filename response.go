package aior

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Content types written by the serializer.
const (
	ContentTypeJSON   = "application/json; charset=utf-8"
	ContentTypeBinary = "application/octet-stream"
	ContentTypeError  = "application/problem+json"
)

type responseKind int

const (
	kindEmpty responseKind = iota // zero value: 200, JSON content type, no body
	kindNoContent
	kindJSON
	kindRaw
)

// Response is the value an operation returns. Build it with Empty,
// NoContent, JSON or Raw; the zero value is Empty.
type Response struct {
	kind   responseKind
	status int
	header http.Header
	value  any
	raw    []byte
}

// Empty is a 200 response with the JSON content type and no body.
func Empty() Response { return Response{kind: kindEmpty} }

// NoContent is a 204 response with the JSON content type and no body.
func NoContent() Response { return Response{kind: kindNoContent} }

// JSON is a 200 response whose body is the JSON encoding of v. Schema
// instances are encoded through their json field names; slices keep their order.
func JSON(v any) Response { return Response{kind: kindJSON, value: v} }

// Raw is passed through untouched: status, headers and body are written as
// given. The content type defaults to application/octet-stream.
func Raw(status int, body []byte) Response {
	return Response{kind: kindRaw, status: status, raw: body}
}

// WithStatus overrides the status code.
func (r Response) WithStatus(code int) Response {
	r.status = code
	return r
}

// WithHeader sets a response header.
func (r Response) WithHeader(key, value string) Response {
	h := make(http.Header, len(r.header)+1)
	for k, v := range r.header {
		h[k] = append([]string(nil), v...)
	}
	h.Set(key, value)
	r.header = h
	return r
}

// Status returns the status code the response will be written with.
func (r Response) Status() int {
	if r.status != 0 {
		return r.status
	}
	if r.kind == kindNoContent {
		return http.StatusNoContent
	}
	return http.StatusOK
}

// Value returns the value a JSON response encodes.
func (r Response) Value() any { return r.value }

// Body returns the encoded body the response will be written with.
func (r Response) Body() ([]byte, error) {
	switch r.kind {
	case kindJSON:
		return json.Marshal(r.value)
	case kindRaw:
		return r.raw, nil
	default:
		return nil, nil
	}
}

// write serializes the response to w.
func (r Response) write(w http.ResponseWriter) error {
	body, err := r.Body()
	if err != nil {
		return err
	}
	return r.writeBody(w, body)
}

// writeBody writes the status, headers and an already encoded body.
func (r Response) writeBody(w http.ResponseWriter, body []byte) error {
	h := w.Header()
	for k, vals := range r.header {
		h[k] = append([]string(nil), vals...)
	}
	if h.Get("Content-Type") == "" {
		if r.kind == kindRaw {
			h.Set("Content-Type", ContentTypeBinary)
		} else {
			h.Set("Content-Type", ContentTypeJSON)
		}
	}

	w.WriteHeader(r.Status())
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// writeValidationErrors writes errs as a 400 JSON array.
func writeValidationErrors(w http.ResponseWriter, errs ValidationErrors) {
	if errs == nil {
		errs = ValidationErrors{}
	}
	//nolint:errcheck,gosec // best-effort after WriteHeader
	JSON(errs).WithStatus(http.StatusBadRequest).write(w)
}

// WriteError writes err the way the router does. Validation errors use the
// 400 array format; everything else becomes an RFC 9457 problem details
// response whose status comes from ErrorStatus.
func WriteError(w http.ResponseWriter, err error) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		writeValidationErrors(w, verrs)
		return
	}

	status := ErrorStatus(err)

	// If the error is already a ProblemDetail, use it directly.
	var pd *ProblemDetail
	if !errors.As(err, &pd) {
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(status),
			Status: status,
			Detail: err.Error(),
		}
	}

	w.Header().Set("Content-Type", ContentTypeError)
	w.WriteHeader(pd.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(pd)
}
