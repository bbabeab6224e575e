package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart.FileHeader by round-tripping a form.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("img", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["img"][0]
}

func TestSaveAndDelete(t *testing.T) {
	store := New(afero.NewMemMapFs())

	rel, err := store.Save(fileHeader(t, "Red Shoe.PNG", []byte("png-bytes")), "products/images")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rel, "products/images/"))
	require.True(t, strings.HasSuffix(rel, ".png"))
	require.True(t, store.Exists(rel))

	f, err := store.HTTP().Open("/" + rel)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(got))
	f.Close()

	require.NoError(t, store.Delete(rel))
	require.False(t, store.Exists(rel))

	// deleting twice is fine
	require.NoError(t, store.Delete(rel))
}

func TestSaveUsesUniqueNames(t *testing.T) {
	store := New(afero.NewMemMapFs())
	a, err := store.Save(fileHeader(t, "a.jpg", []byte("1")), "products/images")
	require.NoError(t, err)
	b, err := store.Save(fileHeader(t, "a.jpg", []byte("2")), "products/images")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHTTPHidesDirectories(t *testing.T) {
	store := New(afero.NewMemMapFs())
	_, err := store.Save(fileHeader(t, "a.jpg", []byte("1")), "products/images")
	require.NoError(t, err)

	_, err = store.HTTP().Open("/products/images")
	require.Error(t, err)
}
