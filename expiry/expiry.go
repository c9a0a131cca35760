// Package expiry 纯函数层：到期天数与状态推导。
// now 必须由调用方注入，内部不读系统时钟。
package expiry

import (
	"sort"
	"time"

	"github.com/chenhan1218/BestBite/models"
)

// DaysBetween 按 UTC 日历日边界计算 from 到 to 的整天数，可为负。
// 两边都取 UTC 零点，避免时区/夏令时重复计数。
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// DaysUntil 解析 YYYY-MM-DD 并返回距 now 的天数，负数表示已过期。
func DaysUntil(expiryDate string, now time.Time) (int, error) {
	d, err := time.Parse("2006-01-02", expiryDate)
	if err != nil {
		return 0, err
	}
	return DaysBetween(now, d), nil
}

// StatusFor 天数到三档状态。已过期仍是 red，没有第四档。
func StatusFor(days int) string {
	switch {
	case days <= 7:
		return models.StatusRed
	case days <= 30:
		return models.StatusYellow
	default:
		return models.StatusGreen
	}
}

// Classify 一次算出派生字段
func Classify(expiryDate string, now time.Time) (days int, status string, err error) {
	days, err = DaysUntil(expiryDate, now)
	if err != nil {
		return 0, "", err
	}
	return days, StatusFor(days), nil
}

// Rank 排序权重：red < yellow < green
func Rank(status string) int {
	switch status {
	case models.StatusRed:
		return 0
	case models.StatusYellow:
		return 1
	default:
		return 2
	}
}

// SortByUrgency 先按状态权重，再按剩余天数升序（同档内最先到期的在前）
func SortByUrgency(items []models.FoodItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := Rank(items[i].Status), Rank(items[j].Status)
		if ri != rj {
			return ri < rj
		}
		return items[i].DaysUntilExpiry < items[j].DaysUntilExpiry
	})
}
