package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dfryer1193/imagevault/api"
	"github.com/dfryer1193/imagevault/shared/db"
	"github.com/dfryer1193/imagevault/vault/application"
	"github.com/dfryer1193/imagevault/vault/domain"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps uploads; originals are stored whole in the database.
const maxUploadBytes = 32 << 20

// VaultHandler serves the ingest and retrieval endpoints.
type VaultHandler struct {
	service  *application.VaultService
	database db.Database
}

func NewVaultHandler(service *application.VaultService, database db.Database) *VaultHandler {
	return &VaultHandler{
		service:  service,
		database: database,
	}
}

// PostPreview computes keys, compression, and statistics for an upload
// without persisting anything. This is the unconfirmed half of an ingest.
func (h *VaultHandler) PostPreview(c *gin.Context) {
	raw, name, targetEdge, ok := h.readUpload(c)
	if !ok {
		return
	}

	p, err := h.service.Preview(c.Request.Context(), raw, name, targetEdge)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse(p, nil))
}

// PostImage runs the full ingest: preview plus persistence. Uploading here is
// the confirmation step.
func (h *VaultHandler) PostImage(c *gin.Context) {
	raw, name, targetEdge, ok := h.readUpload(c)
	if !ok {
		return
	}

	res, err := h.service.Ingest(c.Request.Context(), raw, name, targetEdge)
	if err != nil {
		// A store failure still carries the computed preview; return the
		// token so the user doesn't lose it, flagged as not stored.
		if res != nil && res.Preview != nil && errors.Is(err, domain.ErrStoreWrite) {
			body := uploadResponse(res.Preview, res)
			body.Error = "failed to persist image"
			c.JSON(http.StatusInternalServerError, body)
			return
		}

		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uploadResponse(res.Preview, res))
}

// GetImage returns the stored record's metadata and recomputed statistics.
func (h *VaultHandler) GetImage(c *gin.Context) {
	ret, ok := h.retrieve(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, api.RecordResponse{
		Name:         ret.Record.Name,
		Timestamp:    ret.Record.Timestamp.Format("2006-01-02 15:04:05"),
		TargetEdge:   ret.Record.CompressedSize,
		Format:       string(ret.Format),
		Width:        ret.Original.Width(),
		Height:       ret.Original.Height(),
		OriginalKB:   kb(ret.Stats.OriginalBytes),
		CompressedKB: kb(ret.Stats.CompressedBytes),
		Ratio:        ret.Stats.Ratio,
	})
}

// GetOriginal downloads the full-resolution original as lossless PNG.
func (h *VaultHandler) GetOriginal(c *gin.Context) {
	ret, ok := h.retrieve(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ret.Record.Name+".png"))
	c.Data(http.StatusOK, "image/png", ret.Record.OriginalImage)
}

// GetCompressed downloads the stored compressed rendition in its tier format.
func (h *VaultHandler) GetCompressed(c *gin.Context) {
	ret, ok := h.retrieve(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("%s_compressed.%s", ret.Record.Name, ret.Format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, ret.Format.ContentType(), ret.Record.CompressedImage)
}

// GetHealth reports whether the vault store is reachable.
func (h *VaultHandler) GetHealth(c *gin.Context) {
	if err := h.database.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "database unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readUpload parses the multipart upload form: the image file, an optional
// display name (defaulting to the filename), and the target edge.
func (h *VaultHandler) readUpload(c *gin.Context) (raw []byte, name string, targetEdge int, ok bool) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "missing image file"})
		return nil, "", 0, false
	}

	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image too large"})
		return nil, "", 0, false
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "could not read image file"})
		return nil, "", 0, false
	}
	defer f.Close()

	raw, err = io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "could not read image file"})
		return nil, "", 0, false
	}

	name = c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	targetEdge, err = strconv.Atoi(c.PostForm("target_edge"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "target_edge must be an integer"})
		return nil, "", 0, false
	}

	return raw, name, targetEdge, true
}

// retrieve resolves the token path parameter into a full retrieval, rendering
// the error response on failure.
func (h *VaultHandler) retrieve(c *gin.Context) (*application.Retrieval, bool) {
	ret, err := h.service.Retrieve(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.renderError(c, err)
		return nil, false
	}

	return ret, true
}

// renderError maps the domain error taxonomy onto HTTP statuses. The denial
// message is uniform regardless of why the token didn't match.
func (h *VaultHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthenticationDenied):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "authentication denied"})
	case errors.Is(err, domain.ErrDecode),
		errors.Is(err, domain.ErrInvalidTargetSize),
		errors.Is(err, domain.ErrUnsupportedImageType):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrStoreRead), errors.Is(err, domain.ErrStoreWrite):
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "vault store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
	}
}

func uploadResponse(p *application.Preview, res *application.IngestResult) api.UploadResponse {
	body := api.UploadResponse{
		LookupToken:  p.LookupToken,
		ContentHash:  p.ContentHash,
		Name:         p.Name,
		TargetEdge:   p.TargetEdge,
		Format:       string(p.Format),
		OriginalKB:   kb(p.Stats.OriginalBytes),
		CompressedKB: kb(p.Stats.CompressedBytes),
		Ratio:        p.Stats.Ratio,
	}

	if res != nil {
		body.Stored = res.Stored
		body.ID = res.ID
	}

	return body
}

func kb(bytes int) float64 {
	return float64(bytes) / 1024.0
}
