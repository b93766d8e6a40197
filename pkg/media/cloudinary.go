package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/config"
)

var ErrNotConfigured = errors.New("media host not configured")

// CloudinaryUploader talks to a Cloudinary-style media host: unsigned
// multipart uploads against a preset, signed destroy calls for cleanup.
type CloudinaryUploader struct {
	cfg    config.Media
	client *http.Client
}

func NewCloudinaryUploader(cfg config.Media) *CloudinaryUploader {
	return &CloudinaryUploader{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	if u.cfg.UploadURL == "" || u.cfg.Preset == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("could not build upload request: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("could not build upload request: %w", err)
	}
	if err := writer.WriteField("upload_preset", u.cfg.Preset); err != nil {
		return "", fmt.Errorf("could not build upload request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("could not build upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL+"/image/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("media host returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("could not decode upload response: %w", err)
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	return result.URL, nil
}

// Delete destroys the asset behind a previously returned URL. A missing or
// foreign URL is not an error; the proof is already gone as far as the
// application is concerned.
func (u *CloudinaryUploader) Delete(ctx context.Context, assetURL string) error {
	if u.cfg.UploadURL == "" || u.cfg.APIKey == "" || u.cfg.APISecret == "" {
		return ErrNotConfigured
	}
	publicID := publicIDFromURL(assetURL)
	if publicID == "" {
		log.Debugf("no public id recognized in %q, skipping destroy", assetURL)
		return nil
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	toSign := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, u.cfg.APISecret)
	digest := sha1.Sum([]byte(toSign))

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", u.cfg.APIKey)
	form.Set("signature", hex.EncodeToString(digest[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL+"/image/destroy", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("destroy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("media host returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return nil
}

// publicIDFromURL extracts the public id from a delivery URL of the shape
// .../upload/v<version>/<public_id>.<ext>.
func publicIDFromURL(assetURL string) string {
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, segment := range segments {
		if segment != "upload" || i == len(segments)-1 {
			continue
		}
		rest := segments[i+1:]
		if len(rest) > 1 && strings.HasPrefix(rest[0], "v") {
			if _, err := strconv.Atoi(rest[0][1:]); err == nil {
				rest = rest[1:]
			}
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id))
	}
	return ""
}
