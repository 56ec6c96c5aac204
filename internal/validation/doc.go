// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with the custom tags that plot
// requests and configuration need, and translates failures into the API error
// format.
//
// # Custom Tags
//
//   - plotkind: the value names a registered plot kind (amptime, ampchan, ...)
//   - policy: the value is an averaging policy spelling (none, scalar,
//     vector, vectornorm); empty means none
//
// Field names in errors follow the json tag, then the koanf tag, so messages
// refer to fields the way a caller wrote them.
//
// # Usage
//
//	var req models.ReduceRequest
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
