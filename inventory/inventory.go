// Package inventory 对外门面：校验进来的输入，其余全部委托同步引擎。
// 自身无状态，多个实例共用一个引擎没问题。
package inventory

import (
	"context"

	"github.com/chenhan1218/BestBite/apperr"
	"github.com/chenhan1218/BestBite/models"
	"github.com/chenhan1218/BestBite/syncer"
)

type Service struct {
	engine *syncer.Engine
}

func NewService(e *syncer.Engine) *Service { return &Service{engine: e} }

// RefreshResult stale=true 表示远端不可达，数据来自本地缓存
type RefreshResult struct {
	Items    []models.FoodItem `json:"items"`
	Stale    bool              `json:"stale"`
	LastSync int64             `json:"last_sync"`
}

// List 可选按档位过滤；过滤值在任何 I/O 之前校验
func (s *Service) List(ctx context.Context, userID, status string) ([]models.FoodItem, bool, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, false, apperr.Validation("status", "expected red, yellow or green")
	}
	return s.engine.List(ctx, userID, status)
}

// Add 校验后创建；blob 可为 nil（无图片）
func (s *Service) Add(ctx context.Context, userID string, in models.FoodItemInput, blob *syncer.ImageBlob) (*models.FoodItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.engine.Create(ctx, userID, in, blob)
}

func (s *Service) Update(ctx context.Context, userID, id string, patch models.FoodItemPatch) error {
	if id == "" {
		return apperr.Validation("id", "must not be empty")
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	return s.engine.Update(ctx, userID, id, patch)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return apperr.Validation("id", "must not be empty")
	}
	return s.engine.Delete(ctx, userID, id)
}

func (s *Service) Refresh(ctx context.Context, userID string) (RefreshResult, error) {
	items, stale, err := s.engine.Refresh(ctx, userID)
	if err != nil {
		return RefreshResult{}, err
	}
	return RefreshResult{
		Items:    items,
		Stale:    stale,
		LastSync: s.engine.LastSync(ctx),
	}, nil
}

// Stats 各档数量，永远基于新鲜推导的列表
func (s *Service) Stats(ctx context.Context, userID string) (models.InventoryStats, bool, error) {
	items, stale, err := s.engine.Refresh(ctx, userID)
	if err != nil {
		return models.InventoryStats{}, false, err
	}
	stats := models.InventoryStats{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case models.StatusRed:
			stats.Red++
		case models.StatusYellow:
			stats.Yellow++
		case models.StatusGreen:
			stats.Green++
		}
	}
	return stats, stale, nil
}

// SyncLocal 把本地缓存推回远端（对账）
func (s *Service) SyncLocal(ctx context.Context, userID string) (deleted, upserted int, err error) {
	return s.engine.SyncLocal(ctx, userID)
}
