package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"campuscomplaint/internal/backend/middleware"
	"campuscomplaint/internal/backend/service"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const multipartMemory = 32 << 20

// ComplaintController handles complaint endpoints.
type ComplaintController struct {
	complaintService *service.ComplaintService
	publicURL        string
}

// NewComplaintController creates the controller. publicURL overrides the host used in photo URLs.
func NewComplaintController(complaintService *service.ComplaintService, publicURL string) *ComplaintController {
	return &ComplaintController{complaintService: complaintService, publicURL: publicURL}
}

// Submit accepts a multipart form with a JSON "request" part and an optional "photo" part.
func (h *ComplaintController) Submit(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		response.BadRequest(c, "Expected multipart/form-data")
		return
	}
	raw, err := requestPart(c)
	if err != nil {
		response.BadRequest(c, "Missing request part")
		return
	}
	var req complaint.RequestPart
	if err := json.Unmarshal(raw, &req); err != nil {
		response.BadRequest(c, "Invalid request part")
		return
	}

	principal, _ := middleware.CurrentPrincipal(c)
	input := service.SubmitInput{
		OwnerID:     principal.ID,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}

	if fileHeader, err := c.FormFile("photo"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, pkgerrors.Wrap(err, pkgerrors.PhotoUploadFailed))
			return
		}
		defer file.Close()
		input.Photo = &service.PhotoInput{
			Name:        fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Reader:      file,
		}
	} else if err != http.ErrMissingFile {
		response.BadRequest(c, "Invalid photo part")
		return
	}

	created, err := h.complaintService.Submit(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Complaint submitted successfully", toComplaint(*created, publicBase(c, h.publicURL)))
}

// requestPart reads the "request" part, sent either as a plain field or as a file part.
func requestPart(c *gin.Context) ([]byte, error) {
	form := c.Request.MultipartForm
	if values := form.Value["request"]; len(values) > 0 {
		return []byte(values[0]), nil
	}
	if files := form.File["request"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return nil, fmt.Errorf("request part missing")
}

func (h *ComplaintController) ListMine(c *gin.Context) {
	page, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	principal, _ := middleware.CurrentPrincipal(c)
	items, total, err := h.complaintService.ListMine(c.Request.Context(), principal.ID, filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, toComplaints(items, publicBase(c, h.publicURL)), total, page.Page, page.Size)
}

func (h *ComplaintController) Search(c *gin.Context) {
	page, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	// Students search their own complaints from the home screen; admins search everything.
	principal, _ := middleware.CurrentPrincipal(c)
	var ownerID int64
	if !principal.HasRole(model.RoleAdmin) {
		ownerID = principal.ID
	}
	items, total, err := h.complaintService.Search(c.Request.Context(), ownerID, c.Query("query"), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, toComplaints(items, publicBase(c, h.publicURL)), total, page.Page, page.Size)
}

func (h *ComplaintController) ListAll(c *gin.Context) {
	page, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, total, err := h.complaintService.ListAll(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, toComplaints(items, publicBase(c, h.publicURL)), total, page.Page, page.Size)
}

func (h *ComplaintController) MapList(c *gin.Context) {
	page, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := mapFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, total, err := h.complaintService.MapList(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, toComplaints(items, publicBase(c, h.publicURL)), total, page.Page, page.Size)
}

func (h *ComplaintController) Detail(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	found, err := h.complaintService.Detail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toComplaint(*found, publicBase(c, h.publicURL)))
}

func (h *ComplaintController) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	updated, err := h.complaintService.Update(c.Request.Context(), id, req.Status, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Complaint updated", toComplaint(*updated, publicBase(c, h.publicURL)))
}

func (h *ComplaintController) BulkUpdate(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	updated, err := h.complaintService.BulkUpdate(c.Request.Context(), req.ComplaintIDs, req.Status, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, strconv.Itoa(updated)+" complaints updated", nil)
}

// Photo streams an uploaded photo.
func (h *ComplaintController) Photo(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	reader, stat, err := h.complaintService.OpenPhoto(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()
	c.DataFromReader(http.StatusOK, stat.SizeBytes, stat.ContentType, reader, nil)
}

// UpdateComplaintRequest defines a status change.
type UpdateComplaintRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// BulkUpdateRequest defines a status change for several complaints.
type BulkUpdateRequest struct {
	ComplaintIDs []int64 `json:"complaintIds"`
	Status       string  `json:"status" binding:"required"`
	Note         string  `json:"note"`
}
