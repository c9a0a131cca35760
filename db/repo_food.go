// db/repo_food.go
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/chenhan1218/BestBite/apperr"
	"github.com/chenhan1218/BestBite/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repo 远端库存记录的适配层。所有操作按 userID 隔离；
// id 在这里生成（服务端指派），客户端从不自造 id。
type Repo struct{ DB *gorm.DB }

func NewRepo(conn *gorm.DB) *Repo { return &Repo{DB: conn} }

// wrapRemote 把驱动层错误统一归类成 RemoteUnavailable，调用方用 errors.Is 判断
func wrapRemote(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperr.ErrRemoteUnavailable, err)
}

// CreateFood 新建一条记录并返回完整记录；created_at/updated_at 由 GORM 填
func (r *Repo) CreateFood(ctx context.Context, userID string, in models.FoodItemInput) (*models.FoodItem, error) {
	item := &models.FoodItem{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductName: in.ProductName,
		ExpiryDate:  in.ExpiryDate,
		Confidence:  in.Confidence,
	}
	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, wrapRemote("create food", err)
	}
	return item, nil
}

func (r *Repo) FindFood(ctx context.Context, userID, id string) (*models.FoodItem, error) {
	var item models.FoodItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, wrapRemote("find food", err)
	}
	return &item, nil
}

// ListFoods 默认按 expiry_date 升序；紧急度排序由引擎在推导后做
func (r *Repo) ListFoods(ctx context.Context, userID string) ([]models.FoodItem, error) {
	var items []models.FoodItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expiry_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, wrapRemote("list foods", err)
	}
	return items, nil
}

// UpdateFood 部分更新；expiry_date 变更不在写入时重算派生字段，读取时才算
func (r *Repo) UpdateFood(ctx context.Context, userID, id string, patch models.FoodItemPatch) error {
	updates := map[string]any{}
	if patch.ProductName != nil {
		updates["product_name"] = *patch.ProductName
	}
	if patch.ExpiryDate != nil {
		updates["expiry_date"] = *patch.ExpiryDate
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.Confidence != nil {
		updates["confidence"] = *patch.Confidence
	}

	tx := r.DB.WithContext(ctx).Model(&models.FoodItem{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(updates)
	if tx.Error != nil {
		return wrapRemote("update food", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteFood(ctx context.Context, userID, id string) error {
	tx := r.DB.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.FoodItem{})
	if tx.Error != nil {
		return wrapRemote("delete food", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// BatchDeleteFoods 对账时批量删除，单事务里尽量原子
func (r *Repo) BatchDeleteFoods(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND id IN ?", userID, ids).
			Delete(&models.FoodItem{}).Error
	})
	if err != nil {
		return wrapRemote("batch delete foods", err)
	}
	return nil
}
