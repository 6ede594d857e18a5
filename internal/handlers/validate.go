// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"pagecraft/internal/content"
)

// maxBodyBytes caps request bodies. Page trees with inline content are the
// largest payloads the API accepts.
const maxBodyBytes = 2 << 20

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors point into the request.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// decodeJSON reads the request body into dst and validates it. Every
// failure comes back as a *content.ValidationError.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &content.ValidationError{Field: "body", Message: "request body is empty"}
		case errors.As(err, &maxErr):
			return &content.ValidationError{Field: "body", Message: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)}
		default:
			return &content.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error(), Err: err}
		}
	}
	return validateStruct(dst)
}

// validateStruct runs the validate tags of v and converts the first
// failure into a *content.ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &content.ValidationError{Field: "body", Message: err.Error(), Err: err}
	}
	fe := errs[0]
	return &content.ValidationError{Field: fieldPath(fe.Namespace()), Message: describe(fe), Err: err}
}

// fieldPath drops the root struct name: "createPageRequest.seo.meta_title"
// becomes "seo.meta_title".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// describe turns a failed tag into a short message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param() + " characters"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid URL"
	case "bcp47_language_tag":
		return "must be a BCP 47 language tag"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
