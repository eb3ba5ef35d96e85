package handlers

import (
	"log/slog"
	"net/http"
)

// maxUploadBytes bounds multipart uploads.
const maxUploadBytes = 10 << 20

// UploadResult is the payload of POST /upload.
type UploadResult struct {
	Filename string `json:"filename"`
}

// Upload stores an image
// @Summary      Upload image
// @Description  Store the multipart file field "image" and return its generated name.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      201    {object}  Response{data=UploadResult}
// @Failure      400    {object}  Response{error=string}
// @Router       /upload [post]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	key, err := h.files.Save(r.Context(), header.Filename, file)
	if err != nil {
		slog.ErrorContext(r.Context(), "upload failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	writeJSON(w, http.StatusCreated, UploadResult{Filename: key})
}
