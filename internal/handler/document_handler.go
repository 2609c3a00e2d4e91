package handler

import (
	"github.com/gofiber/fiber/v2"

	"projectroom/internal/domain"
	"projectroom/internal/middleware"
	"projectroom/internal/service/document"
)

const maxDocumentSize = 50 * 1024 * 1024

type DocumentHandler struct {
	documentService document.Service
}

func NewDocumentHandler(documentService document.Service) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	sender, ok := middleware.GetCurrentSender(c)
	if !ok {
		return middleware.Unauthorized("User not authenticated")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("File is required")
	}
	if file.Size > maxDocumentSize {
		return middleware.BadRequest("File size must be less than 50MB")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := domain.UploadDocumentInput{
		DocumentName: c.FormValue("documentName"),
		DocumentType: domain.DocumentType(c.FormValue("documentType")),
		FileName:     file.Filename,
		ContentType:  contentType,
		Size:         file.Size,
	}

	fileReader, err := file.Open()
	if err != nil {
		return middleware.BadRequest("Failed to read file")
	}
	defer fileReader.Close()

	doc, err := h.documentService.Upload(c.Context(), sender, c.Params("projectId"), input, fileReader)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    doc,
		"message": "Document uploaded successfully",
	})
}
