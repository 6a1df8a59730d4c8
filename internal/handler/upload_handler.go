package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/storage"
)

// MaxUploadSize 限制单张图片的大小
const MaxUploadSize = 10 << 20

// UploadImage 处理图片上传请求：校验格式并读取尺寸后写入媒体存储
func (a *API) UploadImage(c *gin.Context) {
	if a.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置媒体存储", "success": 0})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传的图片", "success": 0})
		return
	}
	if file.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "图片过大", "success": 0})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败", "success": 0})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败", "success": 0})
		return
	}
	if len(data) > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "图片过大", "success": 0})
		return
	}

	info, err := storage.InspectImage(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "只允许上传图片文件", "success": 0})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败", "success": 0})
		return
	}

	objectName := storage.ObjectName("uploads", info.Format)
	fileURL, err := a.store.Save(c.Request.Context(), objectName, bytes.NewReader(data), int64(len(data)), "image/"+info.Format)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败", "success": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": 1,
		"message": "上传成功",
		"data": gin.H{
			"filePath": fileURL,
			"url":      fileURL,
			"name":     objectName,
			"width":    info.Width,
			"height":   info.Height,
		},
	})
}

// uploadPrefix 是后台上传对象的目录，删除只允许作用于该目录
const uploadPrefix = "uploads/"

// DeleteUpload 删除 UploadImage 保存的对象，对象不存在时同样返回成功
func (a *API) DeleteUpload(c *gin.Context) {
	if a.store == nil {
		respondError(c, http.StatusServiceUnavailable, "未配置媒体存储")
		return
	}

	name := strings.TrimPrefix(c.Param("name"), "/")
	clean := path.Clean(name)
	if name == "" || clean != name || !strings.HasPrefix(clean, uploadPrefix) {
		respondError(c, http.StatusBadRequest, "无效的文件名")
		return
	}

	if err := a.store.Delete(c.Request.Context(), clean); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "删除文件失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "文件已删除"})
}
