// controllers/food_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chenhan1218/BestBite/app"
	"github.com/chenhan1218/BestBite/apperr"
	"github.com/chenhan1218/BestBite/models"
	"github.com/chenhan1218/BestBite/syncer"

	"github.com/gin-gonic/gin"
)

type FoodController struct{ *Srv }

func NewFoodController(s *Srv) *FoodController { return &FoodController{Srv: s} }

// 错误分类到 HTTP 状态码
func writeError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, apperr.ErrRemoteUnavailable), errors.Is(err, apperr.ErrCacheUnavailable):
		c.JSON(http.StatusServiceUnavailable, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// 列表（?status=red|yellow|green 可选）
func (fc *FoodController) List(c *gin.Context) {
	userID := app.UserID(c)
	items, stale, err := fc.Inventory.List(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []models.FoodItem{}
	}
	c.JSON(http.StatusOK, app.H{"items": items, "stale": stale})
}

// 新增：multipart，image 文件可选
func (fc *FoodController) Create(c *gin.Context) {
	userID := app.UserID(c)

	confidence, _ := strconv.ParseFloat(c.DefaultPostForm("confidence", "0"), 64)
	in := models.FoodItemInput{
		ProductName: c.PostForm("product_name"),
		ExpiryDate:  c.PostForm("expiry_date"),
		Confidence:  confidence,
	}

	var blob *syncer.ImageBlob
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "could not open uploaded image"})
			return
		}
		defer src.Close()
		blob = &syncer.ImageBlob{
			Reader:      src,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		}
	}

	item, err := fc.Inventory.Add(c.Request.Context(), userID, in, blob)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// 部分更新
func (fc *FoodController) Update(c *gin.Context) {
	userID := app.UserID(c)
	var patch models.FoodItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := fc.Inventory.Update(c.Request.Context(), userID, c.Param("id"), patch); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (fc *FoodController) Delete(c *gin.Context) {
	userID := app.UserID(c)
	if err := fc.Inventory.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// 刷新：stale=true 表示数据来自本地缓存
func (fc *FoodController) Refresh(c *gin.Context) {
	userID := app.UserID(c)
	res, err := fc.Inventory.Refresh(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Items == nil {
		res.Items = []models.FoodItem{}
	}
	c.JSON(http.StatusOK, res)
}

// 仪表盘统计
func (fc *FoodController) Stats(c *gin.Context) {
	userID := app.UserID(c)
	stats, stale, err := fc.Inventory.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"stats": stats, "stale": stale})
}

// 对账：本地缓存推回远端
func (fc *FoodController) SyncLocal(c *gin.Context) {
	userID := app.UserID(c)
	deleted, upserted, err := fc.Inventory.SyncLocal(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"deleted": deleted, "upserted": upserted})
}
