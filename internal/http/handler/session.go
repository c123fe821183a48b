package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"sessionvault/internal/model"
	"sessionvault/internal/service"
)

type uploadResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	PublicLink string `json:"public_link,omitempty"`
}

type listResponse struct {
	Success  bool                `json:"success"`
	Sessions []model.SessionFile `json:"sessions"`
	Count    int                 `json:"count"`
}

type downloadResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	LocalPath string `json:"local_path"`
	Filename  string `json:"filename"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UploadSession stores a multipart "file" as a new session file.
//
// @Summary  Upload a session file
// @Tags     sessions
// @Accept   multipart/form-data
// @Produce  json
// @Param    file formData file true "session file"
// @Success  200 {object} uploadResponse
// @Failure  400 {object} errorPayload
// @Failure  503 {object} errorPayload
// @Router   /api/sessions/upload [post]
func UploadSession(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		sf, err := svc.Upload(c.UserContext(), fh.Filename, content)
		if err != nil {
			return writeServiceError(c, "Upload failed", err)
		}
		return c.JSON(uploadResponse{
			Success:    true,
			Message:    "Session file uploaded successfully",
			FileID:     sf.StorageKey,
			Filename:   sf.Filename,
			PublicLink: sf.StorageLink,
		})
	}
}

// ListSessions returns every stored session file, oldest first.
//
// @Summary  List session files
// @Tags     sessions
// @Produce  json
// @Success  200 {object} listResponse
// @Router   /api/sessions [get]
func ListSessions(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, "Failed to list sessions", err)
		}
		if items == nil {
			items = []model.SessionFile{}
		}
		return c.JSON(listResponse{Success: true, Sessions: items, Count: len(items)})
	}
}

// DownloadSession materializes a stored session file on the server's disk.
//
// @Summary  Download a session file to the server
// @Tags     sessions
// @Produce  json
// @Param    file_id path string true "storage key"
// @Success  200 {object} downloadResponse
// @Failure  404 {object} errorPayload
// @Router   /api/sessions/download/{file_id} [get]
func DownloadSession(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Download(c.UserContext(), c.Params("file_id"))
		if err != nil {
			return writeServiceError(c, "Download failed", err)
		}
		return c.JSON(downloadResponse{
			Success:   true,
			Message:   "Session file downloaded successfully",
			LocalPath: res.LocalPath,
			Filename:  res.File.Filename,
		})
	}
}

// DeleteSession removes a session file's metadata and blob.
//
// @Summary  Delete a session file
// @Tags     sessions
// @Produce  json
// @Param    file_id path string true "storage key"
// @Success  200 {object} messageResponse
// @Failure  404 {object} errorPayload
// @Router   /api/sessions/{file_id} [delete]
func DeleteSession(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("file_id")); err != nil {
			return writeServiceError(c, "Delete failed", err)
		}
		return c.JSON(messageResponse{Success: true, Message: "Session file deleted successfully"})
	}
}
