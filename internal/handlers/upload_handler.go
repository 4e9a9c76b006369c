package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Upload Handler ---
//

// UploadImage handles POST /v1/admin/upload
// When UPLOAD_URL is set, the file is forwarded as a multipart POST to the
// hosted image service and the response's secure URL is returned. Without
// it, files land in a local "uploads" folder (dev fallback).
func (h *Handlers) UploadImage(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if uploadURL := os.Getenv("UPLOAD_URL"); uploadURL != "" {
		publicURL, err := h.forwardToImageHost(uploadURL, file)
		if err != nil {
			h.Logger.Printf("image host upload failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": publicURL})
		return
	}

	// 2. Local fallback: create "uploads" directory if needed
	uploadPath := "./uploads"
	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		os.Mkdir(uploadPath, 0755)
	}

	// 3. Generate a safe unique filename (uuid + extension)
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	savePath := filepath.Join(uploadPath, newFilename)

	// 4. Save the file
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	// 5. Return the public URL
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	c.JSON(http.StatusOK, gin.H{
		"url": fmt.Sprintf("%s/uploads/%s", baseURL, newFilename),
	})
}

// forwardToImageHost re-posts the uploaded file to the hosted image service
// and returns the secure URL from its JSON response.
func (h *Handlers) forwardToImageHost(uploadURL string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", file.Filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", err
	}
	if preset := os.Getenv("UPLOAD_PRESET"); preset != "" {
		_ = writer.WriteField("upload_preset", preset)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	resp, err := http.Post(uploadURL, writer.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("image host response missing secure_url")
	}
	return result.SecureURL, nil
}
