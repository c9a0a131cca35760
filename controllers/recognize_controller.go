// controllers/recognize_controller.go
package controllers

import (
	"io"
	"net/http"

	"github.com/chenhan1218/BestBite/app"

	"github.com/gin-gonic/gin"
)

type RecognizeController struct{ *Srv }

func NewRecognizeController(s *Srv) *RecognizeController { return &RecognizeController{Srv: s} }

// 识别：图片进，候选的 name/date/confidence 出。
// 结果只拿来当 Add 的输入，不会绕过校验直接入库。
func (rc *RecognizeController) Recognize(c *gin.Context) {
	if rc.Recognizer == nil {
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "recognizer not configured"})
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing image file"})
		return
	}
	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "could not open uploaded image"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "could not read uploaded image"})
		return
	}

	resp, err := rc.Recognizer.Recognize(c.Request.Context(), data, fh.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, app.H{"error": err.Error()})
		return
	}
	if !resp.Valid() {
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": "classifier returned a partial result", "candidate": resp})
		return
	}
	c.JSON(http.StatusOK, app.H{"candidate": resp, "failed": resp.Failed()})
}
