package api

import (
	"encoding/json/v2"
	"net/http"

	apperrors "github.com/swastiapp/swasti-server/internal/errors"
)

// maxRequestBody caps request bodies; tip content is small.
const maxRequestBody = 1 << 20

// decodeJSON decodes and validates a request body into dst.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)

	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		return apperrors.Wrap(err, apperrors.CodeValidation, "invalid request body")
	}
	return s.validator.Validate(dst)
}
