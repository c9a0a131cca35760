package inventory

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/chenhan1218/BestBite/apperr"
	"github.com/chenhan1218/BestBite/models"
	"github.com/chenhan1218/BestBite/syncer"
)

// 最小可用的三件套假存储，够门面层走完整个协议
type memRemote struct {
	items  map[string]models.FoodItem
	nextID int
}

func (m *memRemote) CreateFood(ctx context.Context, userID string, in models.FoodItemInput) (*models.FoodItem, error) {
	m.nextID++
	item := models.FoodItem{
		ID:          fmt.Sprintf("item-%d", m.nextID),
		UserID:      userID,
		ProductName: in.ProductName,
		ExpiryDate:  in.ExpiryDate,
		Confidence:  in.Confidence,
	}
	m.items[item.ID] = item
	return &item, nil
}

func (m *memRemote) FindFood(ctx context.Context, userID, id string) (*models.FoodItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &it, nil
}

func (m *memRemote) ListFoods(ctx context.Context, userID string) ([]models.FoodItem, error) {
	var out []models.FoodItem
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *memRemote) UpdateFood(ctx context.Context, userID, id string, patch models.FoodItemPatch) error {
	if _, ok := m.items[id]; !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func (m *memRemote) DeleteFood(ctx context.Context, userID, id string) error {
	if _, ok := m.items[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memRemote) BatchDeleteFoods(ctx context.Context, userID string, ids []string) error {
	for _, id := range ids {
		delete(m.items, id)
	}
	return nil
}

type memCache struct {
	items    map[string]models.FoodItem
	lastSync int64
}

func (m *memCache) Put(ctx context.Context, item models.FoodItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *memCache) Get(ctx context.Context, id string) (*models.FoodItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &it, nil
}

func (m *memCache) GetAll(ctx context.Context, userID string) ([]models.FoodItem, error) {
	var out []models.FoodItem
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *memCache) GetAllByStatus(ctx context.Context, userID, status string) ([]models.FoodItem, error) {
	var out []models.FoodItem
	for _, it := range m.items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memCache) Delete(ctx context.Context, id string) error { delete(m.items, id); return nil }

func (m *memCache) LastSyncTime(ctx context.Context) (int64, error) { return m.lastSync, nil }

func (m *memCache) SetLastSyncTime(ctx context.Context, millis int64) error {
	m.lastSync = millis
	return nil
}

type memImages struct{}

func (memImages) Upload(ctx context.Context, userID, itemID string, r io.Reader, size int64, contentType string) (string, error) {
	return "https://img.example.com/" + itemID + ".jpg", nil
}

func (memImages) Delete(ctx context.Context, userID, itemID string) error { return nil }

func newService() *Service {
	remote := &memRemote{items: map[string]models.FoodItem{}}
	cache := &memCache{items: map[string]models.FoodItem{}}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	engine := syncer.New(remote, cache, memImages{}, syncer.WithClock(func() time.Time { return now }))
	return NewService(engine)
}

func futureDate(days int) string {
	return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days).Format("2006-01-02")
}

func TestAddRejectsInvalidInputBeforeIO(t *testing.T) {
	s := newService()
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", models.FoodItemInput{ProductName: "", ExpiryDate: futureDate(3)}, nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = s.Add(ctx, "u1", models.FoodItemInput{ProductName: "Milk", ExpiryDate: "soon"}, nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListRejectsBadFilter(t *testing.T) {
	s := newService()
	_, _, err := s.List(context.Background(), "u1", "purple")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for bad status, got %v", err)
	}
}

func TestAddThenListDerivesFresh(t *testing.T) {
	s := newService()
	ctx := context.Background()

	item, err := s.Add(ctx, "u1", models.FoodItemInput{ProductName: "Milk", ExpiryDate: futureDate(3), Confidence: 90}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Status != models.StatusRed || item.DaysUntilExpiry != 3 {
		t.Errorf("expected (red, 3), got (%s, %d)", item.Status, item.DaysUntilExpiry)
	}

	s.Add(ctx, "u1", models.FoodItemInput{ProductName: "Rice", ExpiryDate: futureDate(90), Confidence: 80}, nil)

	items, _, err := s.List(ctx, "u1", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].ID != item.ID {
		t.Errorf("red item should sort first, got %v", items)
	}
}

func TestStats(t *testing.T) {
	s := newService()
	ctx := context.Background()

	s.Add(ctx, "u1", models.FoodItemInput{ProductName: "Milk", ExpiryDate: futureDate(3)}, nil)
	s.Add(ctx, "u1", models.FoodItemInput{ProductName: "Yogurt", ExpiryDate: futureDate(15)}, nil)
	s.Add(ctx, "u1", models.FoodItemInput{ProductName: "Rice", ExpiryDate: futureDate(90)}, nil)

	stats, stale, err := s.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stale {
		t.Error("stats should not be stale with remote up")
	}
	want := models.InventoryStats{Total: 3, Red: 1, Yellow: 1, Green: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestDeleteEmptyID(t *testing.T) {
	s := newService()
	if err := s.Delete(context.Background(), "u1", ""); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
