package comic

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"comicgallery/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type updateRequest struct {
	ID string `json:"id"`
	Input
}

// List handles GET /comics
// @Summary List comics, newest first
// @Tags comics
// @Produce json
// @Success 200 {array} Comic
// @Router /comics [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.List(r.Context()))
}

// Create handles POST /comics
// @Summary Create a comic
// @Tags comics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body Input true "Comic fields"
// @Success 201 {object} Comic
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /comics [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req Input
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "create comic")
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Update handles PUT /comics
// @Summary Replace the mutable fields of a comic
// @Tags comics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Comic
// @Failure 404 {object} httpx.ErrorResponse
// @Router /comics [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.service.Update(r.Context(), req.ID, req.Input)
	if err != nil {
		writeError(w, r, err, "update comic")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete handles DELETE /comics?id=
// @Summary Delete a comic
// @Tags comics
// @Security BearerAuth
// @Param id query string true "Comic id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /comics [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		writeError(w, r, err, "delete comic")
		return
	}
	httpx.JSONSuccess(w, nil, nil)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONErrorWithRequest(r, w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			return false
		}
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]httpx.ErrorDetail, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, httpx.ErrorDetail{Field: f.Field, Message: f.Message})
		}
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid comic", details)
	case errors.Is(err, ErrNotFound):
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Comic not found", nil)
	default:
		httpx.InternalError(w, r, err, action)
	}
}
