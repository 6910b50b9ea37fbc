package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"shop_backend/internal/pkg/uploader"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fakeUploader 可按文件名定向失败
type fakeUploader struct {
	mu     sync.Mutex
	calls  int
	failOn map[string]bool
}

func (u *fakeUploader) UploadFile(f *multipart.FileHeader) (string, error) {
	u.mu.Lock()
	u.calls++
	u.mu.Unlock()

	if u.failOn[f.Filename] {
		return "", errors.New("oss write rejected")
	}
	return "https://cdn.example.com/" + f.Filename, nil
}

func swapUploader(t *testing.T, u uploader.Uploader) {
	prev := uploader.GlobalUploader
	uploader.GlobalUploader = u
	t.Cleanup(func() { uploader.GlobalUploader = prev })
}

func performUpload(t *testing.T, filenames []string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	for _, name := range filenames {
		part, err := form.CreateFormFile("files", name)
		assert.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		assert.NoError(t, err)
	}
	assert.NoError(t, form.Close())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload", UploadImages)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUploadImages(t *testing.T) {
	t.Run("URLs keep request order", func(t *testing.T) {
		swapUploader(t, &fakeUploader{})

		rec := performUpload(t, []string{"a.jpg", "b.png", "c.webp"})

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp response.Response
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		urls, ok := resp.Data.([]interface{})
		assert.True(t, ok)
		assert.Equal(t, []interface{}{
			"https://cdn.example.com/a.jpg",
			"https://cdn.example.com/b.png",
			"https://cdn.example.com/c.webp",
		}, urls)
	})

	t.Run("Single failure among concurrent uploads", func(t *testing.T) {
		// 多于并发上限的文件数，让失败写入与后续读取真正并发
		files := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg", "g.jpg", "h.jpg"}
		swapUploader(t, &fakeUploader{failOn: map[string]bool{"c.jpg": true}})

		rec := performUpload(t, files)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Upload failed")
	})

	t.Run("Unsupported extension rejected", func(t *testing.T) {
		fake := &fakeUploader{}
		swapUploader(t, fake)

		rec := performUpload(t, []string{"a.gif"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, fake.calls)
	})
}
