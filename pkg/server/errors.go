package server

import (
	"errors"

	"mibhub/pkg/apperror"
	"mibhub/pkg/backend"
	"mibhub/pkg/deploy"
	"mibhub/pkg/log"
	"mibhub/pkg/logstore"
	"mibhub/pkg/mibstore"
	"mibhub/pkg/registry"

	"github.com/labstack/echo/v4"
)

// kinds maps package sentinel errors onto API error kinds.
var kinds = []struct {
	err  error
	kind apperror.Kind
}{
	{registry.ErrHostNotFound, apperror.NotFound},
	{registry.ErrGroupNotFound, apperror.NotFound},
	{deploy.ErrDeploymentNotFound, apperror.NotFound},
	{mibstore.ErrMIBNotFound, apperror.NotFound},
	{registry.ErrHostExists, apperror.Conflict},
	{registry.ErrGroupExists, apperror.Conflict},
	{mibstore.ErrMIBExists, apperror.Conflict},
	{registry.ErrInvalidHost, apperror.Validation},
	{registry.ErrInvalidGroup, apperror.Validation},
	{deploy.ErrUnknownKind, apperror.Validation},
	{mibstore.ErrUnsupportedType, apperror.Validation},
	{mibstore.ErrEmptyArchive, apperror.Validation},
	{mibstore.ErrFileTooLarge, apperror.Validation},
	{logstore.ErrInvalidEntry, apperror.Validation},
	{logstore.ErrInvalidDate, apperror.Validation},
	{backend.ErrNotConfigured, apperror.Unavailable},
}

// classify tags err with the kind of the first matching sentinel.
func classify(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return &apperror.Error{Kind: k.kind, Err: err}
		}
	}
	return err
}

// errorJSON writes the {success:false, error} envelope.
func errorJSON(ctx echo.Context, status int, message string) error {
	return ctx.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondError maps err to a status code. Internal errors are logged and not echoed.
func respondError(ctx echo.Context, err error) error {
	err = classify(err)
	kind := apperror.KindOf(err)
	if kind == apperror.Internal {
		log.Error().
			Err(err).
			Str("method", ctx.Request().Method).
			Str("path", ctx.Request().URL.Path).
			Msg("Request failed")
	}
	return errorJSON(ctx, kind.StatusCode(), apperror.PublicMessage(err))
}

// dataJSON writes the {success:true, data} envelope.
func dataJSON(ctx echo.Context, status int, data interface{}) error {
	return ctx.JSON(status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(ctx echo.Context, dst interface{}) error {
	if err := ctx.Bind(dst); err != nil {
		return apperror.New(apperror.Validation, "invalid request body")
	}
	return nil
}
