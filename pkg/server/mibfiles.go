package server

import (
	"net/http"
	"strconv"

	"mibhub/pkg/apperror"
	"mibhub/pkg/log"

	"github.com/labstack/echo/v4"
)

// uploadMIB handles POST /api/mib-files/upload with a multipart "file" field.
func (s *Server) uploadMIB(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		log.Warn().Err(err).Msg("Upload without file")
		return errorJSON(ctx, http.StatusBadRequest, "No file provided")
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("Failed to open uploaded file")
		return errorJSON(ctx, http.StatusInternalServerError, "failed to read uploaded file")
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close uploaded file")
		}
	}()

	resp, err := s.MIBs.Upload(file.Filename, src)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, resp)
}

// listMIBs handles GET /api/mib-files.
func (s *Server) listMIBs(ctx echo.Context) error {
	files, err := s.MIBs.List()
	if err != nil {
		return respondError(ctx, err)
	}
	return dataJSON(ctx, http.StatusOK, files)
}

// getMIB handles GET /api/mib-files/:id.
func (s *Server) getMIB(ctx echo.Context) error {
	id, err := mibID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	file, err := s.MIBs.Get(id)
	if err != nil {
		return respondError(ctx, err)
	}
	return dataJSON(ctx, http.StatusOK, file)
}

// downloadMIB handles GET /api/mib-files/:id/download.
func (s *Server) downloadMIB(ctx echo.Context) error {
	id, err := mibID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	file, path, err := s.MIBs.Path(id)
	if err != nil {
		return respondError(ctx, err)
	}

	log.Info().Int64("id", id).Str("name", file.Name).Msg("Serving MIB download")
	return ctx.Attachment(path, file.Name)
}

// deleteMIB handles DELETE /api/mib-files/:id.
func (s *Server) deleteMIB(ctx echo.Context) error {
	id, err := mibID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.MIBs.Delete(id); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "MIB file deleted successfully",
		"id":      id,
	})
}

func mibID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.New(apperror.Validation, "invalid mib file id %q", ctx.Param("id"))
	}
	return id, nil
}
