package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestURLSignerSignAndVerify(t *testing.T) {
	signer := NewURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("claims/claim-1/photo.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	ref, parsedExpiry, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "claims/claim-1/photo.jpg", ref)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestURLSignerExpired(t *testing.T) {
	signer := NewURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Sign("claims/claim-1/photo.jpg")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, err = signer.Verify(token)
	require.Error(t, err)
}

func TestURLSignerTamperedToken(t *testing.T) {
	signer := NewURLSigner("secret", time.Hour)
	token, _, err := signer.Sign("claims/claim-1/photo.jpg")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[2] = strings.Repeat("0", len(parts[2]))
	_, _, err = signer.Verify(strings.Join(parts, "."))
	require.Error(t, err)
}

func TestObjectStoreDownloadURL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "claims"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "claims", "photo.jpg"), []byte("jpeg"), 0o644))

	store, err := NewObjectStore(dir, "http://localhost:8080/assets", NewURLSigner("secret", time.Hour))
	require.NoError(t, err)

	url, err := store.DownloadURL(context.Background(), "claims/photo.jpg")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/assets/"))

	_, err = store.DownloadURL(context.Background(), "claims/missing.jpg")
	require.Error(t, err)
}

func TestObjectStoreOpenRejectsEscapingReference(t *testing.T) {
	dir := t.TempDir()
	store, err := NewObjectStore(dir, "http://localhost:8080/assets", NewURLSigner("secret", time.Hour))
	require.NoError(t, err)

	_, err = store.DownloadURL(context.Background(), "../outside.txt")
	require.Error(t, err)
}
