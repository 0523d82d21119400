package storage

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// 2MB cap on profile pictures.
const MaxUploadBytes = 2 << 20

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/avif": ".avif",
	"image/webp": ".webp",
}

// UploadStore writes bounded-size profile pictures under root/profile-pics.
// It is a single synchronous write with no partial-upload recovery.
type UploadStore struct {
	root string
}

func NewUploadStore(root string) (*UploadStore, error) {
	err := os.MkdirAll(filepath.Join(root, "profile-pics"), 0o755)

	if err != nil {
		return nil, err
	}

	return &UploadStore{root: root}, nil
}

// Root is the directory served as static files.
func (s *UploadStore) Root() string {
	return s.root
}

// SaveProfilePicture sniffs the content type, enforces the size cap and
// writes the file as profilePic-<userID><ext>, overwriting any previous
// upload for the same user. Returns the public path the file is served at.
func (s *UploadStore) SaveProfilePicture(userID string, file multipart.File, declaredSize int64) (string, error) {
	if declaredSize > MaxUploadBytes {
		return "", ErrFileTooLarge
	}

	head := make([]byte, 512)
	n, err := file.Read(head)

	if err != nil && err != io.EOF {
		return "", err
	}

	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]

	if !ok {
		return "", ErrUnsupportedType
	}

	name := "profilePic-" + userID + ext
	dst, err := os.Create(filepath.Join(s.root, "profile-pics", name))

	if err != nil {
		return "", err
	}

	defer dst.Close()

	if _, err = dst.Write(head); err != nil {
		return "", err
	}

	// cap the remainder too in case the declared size lied
	written, err := io.Copy(dst, io.LimitReader(file, MaxUploadBytes))

	if err != nil {
		return "", err
	}

	if int64(n)+written > MaxUploadBytes {
		_ = os.Remove(filepath.Join(s.root, "profile-pics", name))
		return "", ErrFileTooLarge
	}

	return "/uploads/profile-pics/" + name, nil
}
