// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/FloorOps/pkg/validation"
)

// The "ident" binding tag rejects identifiers that would corrupt storage
// keys (separators, control characters, over-length values). Registered
// once against gin's shared validator engine.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
			return validation.ValidateID(fl.FieldName(), fl.Field().String()) == nil
		})
	}
}
