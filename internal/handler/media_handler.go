package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// ImageUploader pushes image bytes to the external image host.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// ImageHostClient talks to the image hosting service over HTTP.
type ImageHostClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewImageHostClient builds an image host client.
func NewImageHostClient(client *http.Client, baseURL, apiKey string) *ImageHostClient {
	if baseURL == "" {
		panic("image host baseURL must not be empty")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ImageHostClient{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// Upload streams the file to the host and returns the public URL.
func (c *ImageHostClient) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image host request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("image host error: %s", extractUpstreamError(resp.Body))
	}

	var uploadResp struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil && err != io.EOF {
		return "", fmt.Errorf("could not decode image host response: %w", err)
	}
	if uploadResp.Error != "" {
		return "", fmt.Errorf("image host error: %s", uploadResp.Error)
	}
	if uploadResp.Data.URL == "" {
		return "", fmt.Errorf("image host returned no url")
	}
	return uploadResp.Data.URL, nil
}

var _ ImageUploader = (*ImageHostClient)(nil)

// MediaHandler proxies admin image uploads to the image host.
type MediaHandler struct {
	uploader ImageUploader
}

// NewMediaHandler creates a new handler instance.
func NewMediaHandler(uploader ImageUploader) *MediaHandler {
	return &MediaHandler{uploader: uploader}
}

// Upload handles POST /admin/media requests.
func (h *MediaHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing image file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request().Context(), fileHeader.Filename, file)
	if err != nil {
		return Error(c, http.StatusBadGateway, "image upload failed")
	}

	return Success(c, http.StatusCreated, "image uploaded", map[string]string{"url": url})
}
