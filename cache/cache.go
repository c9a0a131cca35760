// Package cache 本地离线缓存：单文件 sqlite，无任何网络依赖。
// 远端不可达时这里就是读路径的事实来源。
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chenhan1218/BestBite/apperr"
	"github.com/chenhan1218/BestBite/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const lastSyncKey = "last_sync_timestamp"

// CachedItem 镜像远端记录，但派生字段也落库：
// 缓存不负责重算，引擎写入前已推导好（读旧 status 只用于按档查询）
type CachedItem struct {
	ID              string `gorm:"primaryKey"`
	UserID          string `gorm:"index"`
	ProductName     string
	ExpiryDate      string `gorm:"index"`
	DaysUntilExpiry int
	Status          string `gorm:"index"`
	ImageURL        string
	Confidence      float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (CachedItem) TableName() string { return "cached_food_items" }

// Meta 单值元数据槽，目前只有 last_sync_timestamp（epoch 毫秒，0 表示从未同步）
type Meta struct {
	Key   string `gorm:"primaryKey"`
	Value int64
}

func (Meta) TableName() string { return "cache_meta" }

type Store struct{ DB *gorm.DB }

// Open 打开（必要时创建）缓存文件并建表
func Open(path string) (*Store, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w: %v", apperr.ErrCacheUnavailable, err)
	}
	if err := conn.AutoMigrate(&CachedItem{}, &Meta{}); err != nil {
		return nil, fmt.Errorf("migrate cache: %w: %v", apperr.ErrCacheUnavailable, err)
	}
	log.Printf("[cache] opened %s", path)
	return &Store{DB: conn}, nil
}

func wrapCache(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperr.ErrCacheUnavailable, err)
}

func toCached(it models.FoodItem) CachedItem {
	return CachedItem{
		ID:              it.ID,
		UserID:          it.UserID,
		ProductName:     it.ProductName,
		ExpiryDate:      it.ExpiryDate,
		DaysUntilExpiry: it.DaysUntilExpiry,
		Status:          it.Status,
		ImageURL:        it.ImageURL,
		Confidence:      it.Confidence,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

func fromCached(c CachedItem) models.FoodItem {
	return models.FoodItem{
		ID:              c.ID,
		UserID:          c.UserID,
		ProductName:     c.ProductName,
		ExpiryDate:      c.ExpiryDate,
		DaysUntilExpiry: c.DaysUntilExpiry,
		Status:          c.Status,
		ImageURL:        c.ImageURL,
		Confidence:      c.Confidence,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// Put upsert：同 id 整条覆盖，不做部分合并
func (s *Store) Put(ctx context.Context, item models.FoodItem) error {
	row := toCached(item)
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return wrapCache("cache put", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.FoodItem, error) {
	var row CachedItem
	err := s.DB.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, wrapCache("cache get", err)
	}
	item := fromCached(row)
	return &item, nil
}

func (s *Store) GetAll(ctx context.Context, userID string) ([]models.FoodItem, error) {
	var rows []CachedItem
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expiry_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapCache("cache get all", err)
	}
	items := make([]models.FoodItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, fromCached(r))
	}
	return items, nil
}

// GetAllByStatus 按已存的 status 查，不重新推导
func (s *Store) GetAllByStatus(ctx context.Context, userID, status string) ([]models.FoodItem, error) {
	var rows []CachedItem
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("expiry_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapCache("cache get by status", err)
	}
	items := make([]models.FoodItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, fromCached(r))
	}
	return items, nil
}

// Delete 删除不存在的 id 不算错误
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Delete(&CachedItem{}, "id = ?", id).Error
	if err != nil {
		return wrapCache("cache delete", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	err := s.DB.WithContext(ctx).Delete(&CachedItem{}, "user_id = ?", userID).Error
	if err != nil {
		return wrapCache("cache clear", err)
	}
	return nil
}

// LastSyncTime 未同步过返回 0
func (s *Store) LastSyncTime(ctx context.Context) (int64, error) {
	var m Meta
	err := s.DB.WithContext(ctx).First(&m, "key = ?", lastSyncKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapCache("cache last sync", err)
	}
	return m.Value, nil
}

func (s *Store) SetLastSyncTime(ctx context.Context, millis int64) error {
	row := Meta{Key: lastSyncKey, Value: millis}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return wrapCache("cache set last sync", err)
	}
	return nil
}
