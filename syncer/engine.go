// Package syncer 同步引擎：远端为准、缓存镜像。
// 读失败降级走缓存；写失败直接报错，不做离线写队列。
package syncer

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/chenhan1218/BestBite/apperr"
	"github.com/chenhan1218/BestBite/expiry"
	"github.com/chenhan1218/BestBite/models"
)

// RemoteStore 远端记录库（事实来源）
type RemoteStore interface {
	CreateFood(ctx context.Context, userID string, in models.FoodItemInput) (*models.FoodItem, error)
	FindFood(ctx context.Context, userID, id string) (*models.FoodItem, error)
	ListFoods(ctx context.Context, userID string) ([]models.FoodItem, error)
	UpdateFood(ctx context.Context, userID, id string, patch models.FoodItemPatch) error
	DeleteFood(ctx context.Context, userID, id string) error
	BatchDeleteFoods(ctx context.Context, userID string, ids []string) error
}

// LocalCache 本地离线缓存
type LocalCache interface {
	Put(ctx context.Context, item models.FoodItem) error
	Get(ctx context.Context, id string) (*models.FoodItem, error)
	GetAll(ctx context.Context, userID string) ([]models.FoodItem, error)
	GetAllByStatus(ctx context.Context, userID, status string) ([]models.FoodItem, error)
	Delete(ctx context.Context, id string) error
	LastSyncTime(ctx context.Context) (int64, error)
	SetLastSyncTime(ctx context.Context, millis int64) error
}

// ImageStore 图片资产库，键为 (user, item)
type ImageStore interface {
	Upload(ctx context.Context, userID, itemID string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, userID, itemID string) error
}

// ImageBlob 已经过外部管线压缩校验的图片字节流
type ImageBlob struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Engine 依赖全部构造注入，不用全局单例
type Engine struct {
	remote RemoteStore
	cache  LocalCache
	images ImageStore
	now    func() time.Time
}

type Option func(*Engine)

// WithClock 注入时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(remote RemoteStore, cache LocalCache, images ImageStore, opts ...Option) *Engine {
	e := &Engine{remote: remote, cache: cache, images: images, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// derive 重算派生字段。expiry_date 已过校验才会入库，这里解析失败只可能是
// 脏数据，按已过期（red）处理并记日志。
func (e *Engine) derive(item *models.FoodItem, now time.Time) {
	days, status, err := expiry.Classify(item.ExpiryDate, now)
	if err != nil {
		log.Printf("[syncer] bad expiry_date %q on item %s: %v", item.ExpiryDate, item.ID, err)
		days, status = -1, models.StatusRed
	}
	item.DaysUntilExpiry = days
	item.Status = status
}

// Refresh 拉取远端 → 重算 → 写穿缓存 → 清理远端已删的缓存项。
// 远端不可达时退回缓存（重新推导），stale=true，不算失败。
func (e *Engine) Refresh(ctx context.Context, userID string) (items []models.FoodItem, stale bool, err error) {
	now := e.now()

	remote, rerr := e.remote.ListFoods(ctx, userID)
	if rerr != nil {
		if !errors.Is(rerr, apperr.ErrRemoteUnavailable) {
			return nil, false, rerr
		}
		log.Printf("[syncer] remote unreachable, serving cache: %v", rerr)
		cached, cerr := e.cache.GetAll(ctx, userID)
		if cerr != nil {
			return nil, false, cerr
		}
		for i := range cached {
			e.derive(&cached[i], now)
		}
		expiry.SortByUrgency(cached)
		return cached, true, nil
	}

	remoteIDs := make(map[string]struct{}, len(remote))
	for i := range remote {
		e.derive(&remote[i], now)
		remoteIDs[remote[i].ID] = struct{}{}
		// 镜像写失败不致命，下一次成功 refresh 会自愈
		if cerr := e.cache.Put(ctx, remote[i]); cerr != nil {
			log.Printf("[syncer] cache mirror failed for %s: %v", remote[i].ID, cerr)
		}
	}

	// 远端收缩后清掉本地多出来的条目
	if cached, cerr := e.cache.GetAll(ctx, userID); cerr == nil {
		for _, c := range cached {
			if _, ok := remoteIDs[c.ID]; !ok {
				if derr := e.cache.Delete(ctx, c.ID); derr != nil {
					log.Printf("[syncer] cache prune failed for %s: %v", c.ID, derr)
				}
			}
		}
	} else {
		log.Printf("[syncer] cache prune skipped: %v", cerr)
	}

	if cerr := e.cache.SetLastSyncTime(ctx, now.UnixMilli()); cerr != nil {
		log.Printf("[syncer] set last sync failed: %v", cerr)
	}

	expiry.SortByUrgency(remote)
	return remote, false, nil
}

// List 走 refresh 协议，可按档位过滤。降级路径用缓存的 status 索引预筛，
// 但仍重新推导并复核（缓存里放了几天的档位可能已经漂移）。
func (e *Engine) List(ctx context.Context, userID, status string) ([]models.FoodItem, bool, error) {
	if status == "" {
		return e.Refresh(ctx, userID)
	}

	now := e.now()
	remote, rerr := e.remote.ListFoods(ctx, userID)
	if rerr != nil {
		if !errors.Is(rerr, apperr.ErrRemoteUnavailable) {
			return nil, false, rerr
		}
		log.Printf("[syncer] remote unreachable, serving cache: %v", rerr)
		cached, cerr := e.cache.GetAllByStatus(ctx, userID, status)
		if cerr != nil {
			return nil, false, cerr
		}
		out := cached[:0]
		for i := range cached {
			e.derive(&cached[i], now)
			if cached[i].Status == status {
				out = append(out, cached[i])
			}
		}
		expiry.SortByUrgency(out)
		return out, true, nil
	}

	var out []models.FoodItem
	for i := range remote {
		e.derive(&remote[i], now)
		if cerr := e.cache.Put(ctx, remote[i]); cerr != nil {
			log.Printf("[syncer] cache mirror failed for %s: %v", remote[i].ID, cerr)
		}
		if remote[i].Status == status {
			out = append(out, remote[i])
		}
	}
	expiry.SortByUrgency(out)
	return out, false, nil
}

// Create 先建远端记录拿 id，再上传图片、回写 image_url，最后镜像进缓存。
// 图片链路的任何失败都不影响条目创建，image_url 留空等重试。
func (e *Engine) Create(ctx context.Context, userID string, in models.FoodItemInput, blob *ImageBlob) (*models.FoodItem, error) {
	item, err := e.remote.CreateFood(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	if blob != nil {
		url, uerr := e.images.Upload(ctx, userID, item.ID, blob.Reader, blob.Size, blob.ContentType)
		if uerr != nil {
			log.Printf("[syncer] image upload failed for %s, keeping empty image_url: %v", item.ID, uerr)
		} else if werr := e.remote.UpdateFood(ctx, userID, item.ID, models.FoodItemPatch{ImageURL: &url}); werr != nil {
			log.Printf("[syncer] image_url write-back failed for %s: %v", item.ID, werr)
		} else {
			item.ImageURL = url
		}
	}

	e.derive(item, e.now())
	if cerr := e.cache.Put(ctx, *item); cerr != nil {
		log.Printf("[syncer] cache mirror failed for %s: %v", item.ID, cerr)
	}
	return item, nil
}

// Update 远端成功后读回完整记录再镜像，保证缓存里是远端版本
func (e *Engine) Update(ctx context.Context, userID, id string, patch models.FoodItemPatch) error {
	if err := e.remote.UpdateFood(ctx, userID, id, patch); err != nil {
		return err
	}

	item, err := e.remote.FindFood(ctx, userID, id)
	if err != nil {
		log.Printf("[syncer] read-back after update failed for %s: %v", id, err)
		return nil
	}
	e.derive(item, e.now())
	if cerr := e.cache.Put(ctx, *item); cerr != nil {
		log.Printf("[syncer] cache mirror failed for %s: %v", id, cerr)
	}
	return nil
}

// Delete 顺序是协议要求：远端记录 → 图片（尽力而为）→ 缓存。
// 图片删失败不拦着缓存删，否则过期条目会一直挂在界面上。
func (e *Engine) Delete(ctx context.Context, userID, id string) error {
	if err := e.remote.DeleteFood(ctx, userID, id); err != nil {
		return err
	}

	if ierr := e.images.Delete(ctx, userID, id); ierr != nil {
		log.Printf("[syncer] image delete failed for %s: %v", id, ierr)
	}

	if cerr := e.cache.Delete(ctx, id); cerr != nil {
		log.Printf("[syncer] cache delete failed for %s: %v", id, cerr)
	}
	return nil
}

// SyncLocal 把本地缓存推回远端：远端多出来的批量删掉，本地的逐条 upsert
func (e *Engine) SyncLocal(ctx context.Context, userID string) (deleted, upserted int, err error) {
	local, err := e.cache.GetAll(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	remote, err := e.remote.ListFoods(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	localIDs := make(map[string]struct{}, len(local))
	for _, it := range local {
		localIDs[it.ID] = struct{}{}
	}
	remoteIDs := make(map[string]struct{}, len(remote))
	var toDelete []string
	for _, it := range remote {
		remoteIDs[it.ID] = struct{}{}
		if _, ok := localIDs[it.ID]; !ok {
			toDelete = append(toDelete, it.ID)
		}
	}

	if len(toDelete) > 0 {
		if err := e.remote.BatchDeleteFoods(ctx, userID, toDelete); err != nil {
			return 0, 0, err
		}
		deleted = len(toDelete)
	}

	for _, it := range local {
		if _, ok := remoteIDs[it.ID]; ok {
			patch := models.FoodItemPatch{
				ProductName: &it.ProductName,
				ExpiryDate:  &it.ExpiryDate,
				ImageURL:    &it.ImageURL,
				Confidence:  &it.Confidence,
			}
			if err := e.remote.UpdateFood(ctx, userID, it.ID, patch); err != nil {
				return deleted, upserted, err
			}
		} else {
			in := models.FoodItemInput{
				ProductName: it.ProductName,
				ExpiryDate:  it.ExpiryDate,
				Confidence:  it.Confidence,
			}
			if _, err := e.remote.CreateFood(ctx, userID, in); err != nil {
				return deleted, upserted, err
			}
		}
		upserted++
	}
	return deleted, upserted, nil
}

// LastSync 暴露给 refresh 响应用
func (e *Engine) LastSync(ctx context.Context) int64 {
	ts, err := e.cache.LastSyncTime(ctx)
	if err != nil {
		log.Printf("[syncer] read last sync failed: %v", err)
		return 0
	}
	return ts
}
