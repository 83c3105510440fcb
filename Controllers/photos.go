package Controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"Atlas/Models"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
)

const (
	photoDir     = "photos"
	thumbnailDir = "photos/thumbnails"
	maxPhotoSize = 10 << 20 // 10 MB
)

// UploadResultPhoto stores an evidence photo for an inspection result and
// generates a thumbnail. The stored reference goes on the result row.
func UploadResultPhoto(c *fiber.Ctx) error {
	resultID, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid result id",
		})
	}

	var result Models.InspectionResult
	if err := Models.DB.First(&result, resultID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Inspection result not found",
		})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing photo file",
			"error":   err.Error(),
		})
	}
	if file.Size > maxPhotoSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"message": "Photo exceeds the 10MB limit",
		})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only JPEG and PNG photos are accepted",
		})
	}

	if err := os.MkdirAll(thumbnailDir, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to prepare photo storage",
			"error":   err.Error(),
		})
	}

	filename := fmt.Sprintf("result_%d_%d%s", resultID, time.Now().UnixNano(), ext)
	fullPath := filepath.Join(photoDir, filename)
	if err := c.SaveFile(file, fullPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save photo",
			"error":   err.Error(),
		})
	}

	img, err := imaging.Open(fullPath, imaging.AutoOrientation(true))
	if err != nil {
		os.Remove(fullPath)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Uploaded file is not a valid image",
			"error":   err.Error(),
		})
	}
	thumbnail := imaging.Resize(img, 320, 0, imaging.Lanczos)
	thumbnailPath := filepath.Join(thumbnailDir, filename)
	if err := imaging.Save(thumbnail, thumbnailPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate thumbnail",
			"error":   err.Error(),
		})
	}

	if err := Models.DB.Model(&result).Update("photo_reference", filename).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to attach photo to result",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Photo uploaded successfully",
		"photo":     "/photos/" + filename,
		"thumbnail": "/photos/thumbnails/" + filename,
	})
}

// ServePhoto streams a stored photo or thumbnail by filename.
func ServePhoto(c *fiber.Ctx) error {
	filename := filepath.Base(c.Params("filename"))
	path := filepath.Join(photoDir, filename)
	if c.QueryBool("thumbnail") {
		path = filepath.Join(thumbnailDir, filename)
	}

	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Photo not found",
		})
	}
	return c.SendFile(path)
}
