package upload

import (
	"errors"
	"net/http"

	"comicgallery/internal/httpx"
	"comicgallery/internal/platform/logging"
)

// FormField is the multipart field carrying the file.
const FormField = "file"

type HTTPHandler struct {
	service   *Service
	maxMemory int64
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service, maxMemory: 8 << 20}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload handles POST /upload
// @Summary Upload an image to object storage
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /upload [post]
func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.service.Enabled() {
		httpx.JSONErrorWithRequest(r, w, http.StatusServiceUnavailable, "UPLOAD_DISABLED", "Uploads are not configured", nil)
		return
	}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONErrorWithRequest(r, w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "File too large", nil)
			return
		}
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Expected a multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "No file provided", []httpx.ErrorDetail{
			{Field: FormField, Message: "file is required"},
		})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.service.Upload(r.Context(), file, header.Size, header.Filename, contentType)
	if err != nil {
		if errors.Is(err, ErrUpload) {
			logging.Ctx(r.Context()).Warn().Err(err).Str("file", header.Filename).Msg("upload relay failed")
			httpx.JSONErrorWithRequest(r, w, http.StatusBadGateway, "UPLOAD_FAILED", "Upload failed", nil)
			return
		}
		httpx.InternalError(w, r, err, "upload file")
		return
	}

	httpx.JSON(w, http.StatusOK, uploadResponse{URL: url})
}
