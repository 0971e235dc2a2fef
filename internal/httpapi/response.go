// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/internal/session"
	"github.com/teradata-labs/loom-assistant/pkg/storage"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// Error codes returned in ErrorDetail.Code, stable identifiers clients can
// switch on without parsing Message.
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeConnectionLost = "CONNECTION_LOST"
	ErrCodeInternalError  = "INTERNAL_ERROR"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code, a human-readable message, and optional
// structured detail (e.g. field validation failures).
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("encode response", zap.Error(err))
	}
}

// writeError classifies err into an HTTP status and a stable error code per
// the external-interface error mapping: NotFound -> 404, invalid
// argument/schema violation -> 400, immutable/busy -> 409, connection lost
// -> 503, anything else -> 500.
func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

func writeErrorWithDetails(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}

func errorStatus(err error) (int, string) {
	var perr *storage.PersistenceError
	if errors.As(err, &perr) {
		switch perr.Kind {
		case storage.NotFound:
			return http.StatusNotFound, ErrCodeNotFound
		case storage.Conflict, storage.Immutable:
			return http.StatusConflict, ErrCodeConflict
		case storage.Corrupt, storage.Io:
			return http.StatusInternalServerError, ErrCodeInternalError
		}
	}

	switch {
	case errors.Is(err, workspace.ErrConnectionLost), errors.Is(err, workspace.ErrConnectionFailed):
		return http.StatusServiceUnavailable, ErrCodeConnectionLost
	case errors.Is(err, workspace.ErrPathEscape):
		return http.StatusBadRequest, ErrCodeInvalidRequest
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, ErrCodeConflict
	}

	return http.StatusInternalServerError, ErrCodeInternalError
}
