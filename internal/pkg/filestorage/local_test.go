package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestValidateResume(t *testing.T) {
	assert.ErrorIs(t, ValidateResume(nil), ErrEmptyFile)
	assert.NoError(t, ValidateResume(fileHeader(t, "cv.PDF", []byte("%PDF"))))
	assert.ErrorIs(t, ValidateResume(fileHeader(t, "cv.exe", []byte("MZ"))), ErrUnsupportedType)

	big := &multipart.FileHeader{Filename: "cv.pdf", Size: MaxResumeSize + 1}
	assert.ErrorIs(t, ValidateResume(big), ErrFileTooLarge)
}

func TestSaveAndDeleteResume(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := ls.SaveResume(fileHeader(t, "cv.docx", []byte("resume")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/resumes/"))
	assert.True(t, strings.HasSuffix(url, ".docx"))

	full := ls.GetFullPath(url)
	assert.Equal(t, filepath.Join(dir, "resumes", filepath.Base(full)), full)
	_, err = os.Stat(full)
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ls.DeleteFile(url))
}

func TestSubPathCannotEscapeRoot(t *testing.T) {
	assert.Equal(t, "etc", cleanSubPath("../../etc"))
	assert.Equal(t, "", cleanSubPath(""))

	ls := &LocalStorage{basePath: "/srv/uploads"}
	assert.Equal(t, filepath.Join("/srv/uploads", "resumes", "a.pdf"), ls.GetFullPath("/uploads/resumes/a.pdf"))
	assert.Equal(t, filepath.Join("/srv/uploads", "etc", "passwd"), ls.GetFullPath("/uploads/../../etc/passwd"))
}
