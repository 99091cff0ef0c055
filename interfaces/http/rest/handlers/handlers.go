// Package handlers implements the REST endpoints. Every handler
// decodes and validates its request body, delegates to one service
// call, and writes the standard response envelope.
package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"blog-backend/pkg/common"
	"blog-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate parses the JSON body into dst and runs the
// struct's validation tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := common.ParseJSONBody(w, r, dst, maxBodyBytes); err != nil {
		return errors.NewValidationError("invalid request body").WithCause(err)
	}
	if err := validate.Struct(dst); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

// respondError logs server-side failures and writes the error
// envelope.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil || appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	common.RespondAppError(w, err)
}

// subjectID returns the authenticated caller's id; the auth
// middleware guarantees it is present on API routes.
func subjectID(r *http.Request) string {
	userID, _ := common.GetUserID(r.Context())
	return userID
}
