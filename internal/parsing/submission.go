package parsing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"torchlight-intake/internal/form"
)

// ErrMalformedRequest is returned when a request body cannot be read as a
// questionnaire payload at all.
var ErrMalformedRequest = errors.New("malformed request body")

// DecodeSubmission parses a request body into a Submission. Any JSON object is
// accepted, however few fields it carries. A field whose value has the wrong
// shape is left empty and named in Submission.Dropped; the rest of the object
// still decodes. The original bytes are kept on the result.
func DecodeSubmission(body []byte) (form.Submission, error) {
	var sub form.Submission

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return sub, fmt.Errorf("%w: empty body", ErrMalformedRequest)
	}
	if trimmed[0] != '{' {
		return sub, fmt.Errorf("%w: expected a JSON object", ErrMalformedRequest)
	}

	if err := json.Unmarshal(trimmed, &sub); err != nil {
		// a type mismatch is only reported after the whole object was decoded
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return form.Submission{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		sub.Dropped = append(sub.Dropped, typeErr.Field)
	}

	sub.Raw = append(json.RawMessage(nil), trimmed...)
	return sub, nil
}
