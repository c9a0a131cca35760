package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/chenhan1218/BestBite/apperr"
	"github.com/chenhan1218/BestBite/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	return s
}

func sample(id, status string, days int) models.FoodItem {
	return models.FoodItem{
		ID:              id,
		UserID:          "user-1",
		ProductName:     "Milk",
		ExpiryDate:      "2026-04-01",
		DaysUntilExpiry: days,
		Status:          status,
		ImageURL:        "https://img.example.com/" + id + ".jpg",
		Confidence:      90,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := sample("a", models.StatusRed, 3)
	if err := s.Put(ctx, item); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ProductName != item.ProductName || got.Status != item.Status ||
		got.DaysUntilExpiry != item.DaysUntilExpiry || got.ImageURL != item.ImageURL {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestPutIsFullOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, sample("a", models.StatusGreen, 40)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	updated := sample("a", models.StatusRed, 2)
	updated.ProductName = "Old Milk"
	if err := s.Put(ctx, updated); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, _ := s.Get(ctx, "a")
	if got.ProductName != "Old Milk" || got.Status != models.StatusRed || got.DaysUntilExpiry != 2 {
		t.Errorf("upsert should overwrite the whole record, got %+v", got)
	}

	all, _ := s.GetAll(ctx, "user-1")
	if len(all) != 1 {
		t.Errorf("expected 1 record after upsert, got %d", len(all))
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, sample("r1", models.StatusRed, 2))
	s.Put(ctx, sample("y1", models.StatusYellow, 15))
	s.Put(ctx, sample("g1", models.StatusGreen, 60))

	// 按已存档位查，不重新推导
	red, err := s.GetAllByStatus(ctx, "user-1", models.StatusRed)
	if err != nil {
		t.Fatalf("GetAllByStatus: %v", err)
	}
	if len(red) != 1 || red[0].ID != "r1" {
		t.Errorf("expected [r1], got %v", red)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, sample("a", models.StatusRed, 3))
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// 再删不报错
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, sample("a", models.StatusRed, 3))
	s.Put(ctx, sample("b", models.StatusGreen, 50))
	if err := s.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	all, _ := s.GetAll(ctx, "user-1")
	if len(all) != 0 {
		t.Errorf("expected empty cache, got %d items", len(all))
	}
}

func TestLastSyncTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// 从未同步过 = 0
	ts, err := s.LastSyncTime(ctx)
	if err != nil {
		t.Fatalf("LastSyncTime: %v", err)
	}
	if ts != 0 {
		t.Errorf("expected 0 before first sync, got %d", ts)
	}

	if err := s.SetLastSyncTime(ctx, 1767168000000); err != nil {
		t.Fatalf("SetLastSyncTime: %v", err)
	}
	ts, _ = s.LastSyncTime(ctx)
	if ts != 1767168000000 {
		t.Errorf("expected 1767168000000, got %d", ts)
	}

	// 覆盖写
	s.SetLastSyncTime(ctx, 1767254400000)
	ts, _ = s.LastSyncTime(ctx)
	if ts != 1767254400000 {
		t.Errorf("expected 1767254400000, got %d", ts)
	}
}

func TestUserScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sample("a", models.StatusRed, 3)
	b := sample("b", models.StatusRed, 3)
	b.UserID = "user-2"
	s.Put(ctx, a)
	s.Put(ctx, b)

	mine, _ := s.GetAll(ctx, "user-1")
	if len(mine) != 1 || mine[0].ID != "a" {
		t.Errorf("expected only user-1's items, got %v", mine)
	}
}
