package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	appErrors "github.com/agriclaim/review-api/pkg/errors"
)

// ObjectStore maps opaque asset references to fetchable download URLs.
// References are relative paths inside a base directory; download URLs
// carry an HMAC-signed token validated when the asset is served.
type ObjectStore struct {
	baseDir string
	baseURL string
	signer  *URLSigner
}

// NewObjectStore ensures the base directory exists and returns a handle.
func NewObjectStore(baseDir, baseURL string, signer *URLSigner) (*ObjectStore, error) {
	if baseDir == "" {
		baseDir = "./data/assets"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset directory: %w", err)
	}
	return &ObjectStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
	}, nil
}

// DownloadURL resolves an asset reference into a signed, time-limited URL.
// A missing or escaping reference fails the resolution.
func (s *ObjectStore) DownloadURL(ctx context.Context, ref string) (string, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrResolution.Code, appErrors.ErrResolution.Status, "invalid asset reference")
	}
	if _, err := os.Stat(path); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrResolution.Code, appErrors.ErrResolution.Status, "asset not found")
	}
	token, _, err := s.signer.Sign(ref)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrResolution.Code, appErrors.ErrResolution.Status, "sign asset url")
	}
	return fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(token)), nil
}

// Open verifies a signed token and returns a read-only handle for the asset.
func (s *ObjectStore) Open(token string) (*os.File, error) {
	ref, _, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrResolution.Code, appErrors.ErrResolution.Status, "invalid download token")
	}
	path, err := s.resolve(ref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrResolution.Code, appErrors.ErrResolution.Status, "invalid asset reference")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrResolution.Code, appErrors.ErrResolution.Status, "open asset")
	}
	return file, nil
}

// Save writes asset bytes under the given reference. Used by the seeder
// and tests; claim ingestion itself lives outside this service.
func (s *ObjectStore) Save(ref string, r io.Reader) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare asset directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create asset file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	return nil
}

func (s *ObjectStore) resolve(ref string) (string, error) {
	cleaned := filepath.Clean("/" + ref)
	if cleaned == "/" {
		return "", fmt.Errorf("empty reference")
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
