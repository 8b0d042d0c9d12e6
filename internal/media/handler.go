package media

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ordoo/ordoo_backend/internal/apperr"
)

// Handler exposes upload endpoints. Routes carrying it sit behind the session
// middleware.
type Handler struct {
	service *Service
}

// NewHandler constructs the upload HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadSingle stores a complete file from the "file" multipart field.
func (h *Handler) UploadSingle(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "No file provided")
	}
	data, contentType, err := readPart(file)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	media, err := h.service.UploadSingle(c.UserContext(), contentType, data)
	if err != nil {
		return fiber.NewError(apperr.Status(err), apperr.MessageOf(err))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"public_id": media.Key,
		"url":       media.URL,
	})
}

// UploadChunk accepts one part of a chunked upload from the "chunk" multipart
// field plus chunkIndex/totalChunks/uploadId form values.
func (h *Handler) UploadChunk(c *fiber.Ctx) error {
	file, err := c.FormFile("chunk")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "No chunk provided")
	}
	data, contentType, err := readPart(file)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	index, err := strconv.Atoi(c.FormValue("chunkIndex"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid chunkIndex")
	}
	total, err := strconv.Atoi(c.FormValue("totalChunks"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid totalChunks")
	}

	media, progress, err := h.service.UploadChunk(c.UserContext(), ChunkInput{
		UploadID:    c.FormValue("uploadId"),
		ContentType: contentType,
		Index:       index,
		Total:       total,
		Data:        data,
	})
	if err != nil {
		return fiber.NewError(apperr.Status(err), apperr.MessageOf(err))
	}
	if media == nil {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message":  "Chunk received",
			"progress": progress,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"public_id": media.Key,
		"url":       media.URL,
	})
}

func readPart(file *multipart.FileHeader) ([]byte, string, error) {
	f, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, file.Header.Get("Content-Type"), nil
}
