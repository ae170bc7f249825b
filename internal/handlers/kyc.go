package handlers

import (
	"fmt"

	"eventflex/internal/services/kyc"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type KYCHandler struct {
	service kyc.Service
}

func NewKYCHandler(s kyc.Service) *KYCHandler { return &KYCHandler{service: s} }

// UploadDocument accepts a multipart form with a "file" part and a "type" field.
func (h *KYCHandler) UploadDocument(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "unable to read uploaded file")
	}
	defer f.Close()

	doc, err := h.service.UploadDocument(c.UserContext(), claims.UserID, kyc.Upload{
		Type:     c.FormValue("type"),
		FileName: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Document uploaded", doc)
}

func (h *KYCHandler) ListDocuments(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	docs, err := h.service.ListDocuments(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Documents", docs)
}

func (h *KYCHandler) DocumentFile(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	return h.sendDocument(c, claims.UserID)
}

// AdminDocumentFile lets reviewers open any user's document.
func (h *KYCHandler) AdminDocumentFile(c *fiber.Ctx) error {
	return h.sendDocument(c, 0)
}

func (h *KYCHandler) sendDocument(c *fiber.Ctx, ownerID uint) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	doc, data, err := h.service.OpenDocument(c.UserContext(), ownerID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	c.Set(fiber.HeaderContentType, doc.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", doc.FileName))
	return c.Send(data)
}

func (h *KYCHandler) GetStatus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	status, err := h.service.Status(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC status", status)
}

func (h *KYCHandler) Submit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	rec, err := h.service.Submit(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC submitted", rec)
}

// Admin review

func (h *KYCHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	list, total, err := h.service.List(c.UserContext(), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, list))
}

func (h *KYCHandler) Approve(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	rec, err := h.service.Approve(c.UserContext(), claims.UserID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC approved", rec)
}

func (h *KYCHandler) Reject(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var input struct {
		Reason string `json:"reason"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	rec, err := h.service.Reject(c.UserContext(), claims.UserID, id, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC rejected", rec)
}
