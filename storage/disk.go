package storage

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"talksy/errors"
)

// MediaStore writes uploaded avatars and message images to a directory
// served back under /media/.
type MediaStore struct {
	root string
	log  *slog.Logger
}

func NewMediaStore(root string, log *slog.Logger) (*MediaStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media root: %w", err)
	}
	return &MediaStore{root: root, log: log}, nil
}

// Clients send images as data URLs ("data:image/png;base64,...."). The
// declared media type is ignored: the stored type comes from sniffing the
// decoded bytes, so a mislabelled payload cannot smuggle another format in.
func (m *MediaStore) SaveImage(dataURL string) (string, error) {
	payload := dataURL
	if i := strings.Index(payload, ","); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", errors.ErrUnsupportedImage
	}

	detected := mimetype.Detect(raw)
	if !isSupportedImage(detected) {
		m.log.Debug("rejected upload", "mime_type", detected.String())
		return "", errors.ErrUnsupportedImage
	}

	name := uuid.NewString() + detected.Extension()
	if err := os.WriteFile(filepath.Join(m.root, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return "/media/" + name, nil
}

// Open resolves a stored name back to a file, refusing anything that
// escapes the media root.
func (m *MediaStore) Open(name string) (*os.File, error) {
	clean := filepath.Base(name)
	return os.Open(filepath.Join(m.root, clean))
}

func isSupportedImage(detected *mimetype.MIME) bool {
	for _, allowed := range []string{"image/png", "image/jpeg", "image/gif", "image/webp"} {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}
