// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/models"
	"github.com/tomtom215/visreduce/internal/reducer"
	"github.com/tomtom215/visreduce/internal/validation"
)

// sanitizeLogValue escapes control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error response. err, if set, is logged only.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondErrorDetails(w, status, code, message, nil, err)
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// validateRequest validates a struct using go-playground/validator.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// reductionStatus maps a reduction error to an HTTP status and error code.
func reductionStatus(err error) (int, string) {
	switch reducer.Kind(err) {
	case "configuration":
		return http.StatusBadRequest, "CONFIGURATION_ERROR"
	case "unsupported_column":
		return http.StatusBadRequest, "UNSUPPORTED_COLUMN"
	case "consistency":
		return http.StatusUnprocessableEntity, "CONSISTENCY_ERROR"
	case "canceled":
		return http.StatusServiceUnavailable, "REQUEST_CANCELED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// cloneSelection deep-copies s so a request decoded on top of it cannot
// write into the shared defaults.
func cloneSelection(s reducer.Selection) reducer.Selection {
	out := s
	out.Channels = append([]int(nil), s.Channels...)
	out.TimeRanges = append([]average.Range(nil), s.TimeRanges...)
	if s.DataDescriptions != nil {
		out.DataDescriptions = make([]reducer.DDSelection, len(s.DataDescriptions))
		for i, dd := range s.DataDescriptions {
			dd.Products = append([]int(nil), dd.Products...)
			out.DataDescriptions[i] = dd
		}
	}
	if s.Solint != nil {
		v := *s.Solint
		out.Solint = &v
	}
	if s.WeightThreshold != nil {
		v := *s.WeightThreshold
		out.WeightThreshold = &v
	}
	return out
}
