package handler

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"shop_backend/internal/pkg/uploader"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// 商品图片允许的扩展名
var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

const maxImageSize = 5 << 20 // 5MB

// UploadImages 上传商品图片到对象存储（支持批量）
// @Summary 上传商品图片
// @Tags Common
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} response.Response{data=[]string} "URLs"
// @Router /upload [post]
func UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No files uploaded")
		return
	}

	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if !allowedImageExt[ext] {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam,
				"Unsupported file type: "+ext)
			return
		}
		if f.Size > maxImageSize {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam,
				"File too large: "+f.Filename)
			return
		}
	}

	if uploader.GlobalUploader == nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Uploader not initialized")
		return
	}

	// 结果按索引写入，保持与入参一致的顺序
	urls := make([]string, len(files))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var uploadErr error

	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if uploadErr == nil {
			uploadErr = err
		}
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return uploadErr != nil
	}

	// 限制并发数为 5
	sem := make(chan struct{}, 5)

	for i, file := range files {
		wg.Add(1)
		go func(index int, f *multipart.FileHeader) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			// 已有失败时放弃剩余上传
			if failed() {
				return
			}

			url, err := uploader.GlobalUploader.UploadFile(f)
			if err != nil {
				setErr(err)
				return
			}
			urls[index] = url
		}(i, file)
	}

	wg.Wait()

	if uploadErr != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Upload failed: "+uploadErr.Error())
		return
	}

	response.Success(c, urls)
}
