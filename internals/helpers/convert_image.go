package helper

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	bannerMaxWidth  = 1200
	bannerQuality   = 80
	bannerMaxUpload = 8 << 20 // 8MB raw upload ceiling
)

// SaveBannerImage decodes an uploaded jpeg/png/webp, downscales it to the
// banner width and stores it as webp under UPLOAD_DIR. Returns the public
// path (served by the frontend CDN / reverse proxy, not by this app).
func SaveBannerImage(folder string, fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, io.LimitReader(src, bannerMaxUpload+1)); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if buf.Len() > bannerMaxUpload {
		return "", fmt.Errorf("image exceeds %dMB", bannerMaxUpload>>20)
	}

	img, err := decodeImage(buf.Bytes(), fileHeader.Filename)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > bannerMaxWidth {
		img = imaging.Resize(img, bannerMaxWidth, 0, imaging.CatmullRom)
	}

	out := new(bytes.Buffer)
	if err := webp.Encode(out, img, &webp.Options{Lossless: false, Quality: bannerQuality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	dir := filepath.Join(uploadDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir upload dir: %w", err)
	}

	filename := GenerateUniqueFilename(fileHeader.Filename)
	if err := os.WriteFile(filepath.Join(dir, filename), out.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write webp: %w", err)
	}

	return "/" + filepath.ToSlash(filepath.Join("uploads", folder, filename)), nil
}

// decodeImage sniffs MIME first, falls back to extension.
func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"):
		return imaging.Decode(bytes.NewReader(all), imaging.AutoOrientation(true))
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(all))
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return imaging.Decode(bytes.NewReader(all), imaging.AutoOrientation(true))
	case ".webp":
		return webp.Decode(bytes.NewReader(all))
	}
	return nil, fmt.Errorf("unsupported image format: %s", ct)
}

func sanitizeFilename(filename string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)
	return re.ReplaceAllString(filename, "_")
}

func GenerateUniqueFilename(originalFilename string) string {
	base := strings.TrimSuffix(sanitizeFilename(originalFilename), filepath.Ext(originalFilename))
	return fmt.Sprintf("%s-%s-%s.webp", time.Now().Format("20060102"), uuid.New().String(), base)
}
