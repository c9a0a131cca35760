// models/food_item.go
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/chenhan1218/BestBite/apperr"
)

const FoodItemTable = "food_items"

// 三档状态：red ≤7 天（含已过期）、yellow 8-30 天、green >30 天
const (
	StatusRed    = "red"
	StatusYellow = "yellow"
	StatusGreen  = "green"
)

type FoodItem struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string `gorm:"size:120;index;not null" json:"-"`
	ProductName string `gorm:"size:200;not null" json:"product_name"`
	ExpiryDate  string `gorm:"size:10;not null;index" json:"expiry_date"` // YYYY-MM-DD

	// 派生字段：每次读取时按当前时间重算，远端不落库
	DaysUntilExpiry int    `gorm:"-" json:"days_until_expiry"`
	Status          string `gorm:"-" json:"status"`

	ImageURL   string    `gorm:"size:512" json:"image_url"`
	Confidence float64   `gorm:"not null;default:0" json:"confidence"` // 0-100
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FoodItem) TableName() string { return FoodItemTable }

// FoodItemInput 新增时由调用方提供的字段
type FoodItemInput struct {
	ProductName string  `json:"product_name"`
	ExpiryDate  string  `json:"expiry_date"`
	Confidence  float64 `json:"confidence"`
}

// FoodItemPatch 部分更新，nil 字段表示不改
type FoodItemPatch struct {
	ProductName *string  `json:"product_name,omitempty"`
	ExpiryDate  *string  `json:"expiry_date,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

func (p FoodItemPatch) Empty() bool {
	return p.ProductName == nil && p.ExpiryDate == nil && p.ImageURL == nil && p.Confidence == nil
}

// InventoryStats 仪表盘统计
type InventoryStats struct {
	Total  int `json:"total"`
	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	Green  int `json:"green"`
}

var (
	spaceRe = regexp.MustCompile(`\s+`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NormalizeName 去首尾空白并压缩内部空白
func NormalizeName(name string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
}

// ValidDate 校验 YYYY-MM-DD 且为真实日期
func ValidDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func ValidStatus(s string) bool {
	return s == StatusRed || s == StatusYellow || s == StatusGreen
}

// Validate 规范化并校验输入；任何存储调用之前执行
func (in *FoodItemInput) Validate() error {
	in.ProductName = NormalizeName(in.ProductName)
	if in.ProductName == "" {
		return apperr.Validation("product_name", "must not be empty")
	}
	if len([]rune(in.ProductName)) > 100 {
		return apperr.Validation("product_name", "longer than 100 characters")
	}
	if !ValidDate(in.ExpiryDate) {
		return apperr.Validation("expiry_date", "expected YYYY-MM-DD")
	}
	if in.Confidence < 0 || in.Confidence > 100 {
		return apperr.Validation("confidence", "must be within [0,100]")
	}
	return nil
}

// Validate 只校验补丁里出现的字段
func (p *FoodItemPatch) Validate() error {
	if p.Empty() {
		return apperr.Validation("patch", "no fields to update")
	}
	if p.ProductName != nil {
		name := NormalizeName(*p.ProductName)
		if name == "" {
			return apperr.Validation("product_name", "must not be empty")
		}
		if len([]rune(name)) > 100 {
			return apperr.Validation("product_name", "longer than 100 characters")
		}
		p.ProductName = &name
	}
	if p.ExpiryDate != nil && !ValidDate(*p.ExpiryDate) {
		return apperr.Validation("expiry_date", "expected YYYY-MM-DD")
	}
	if p.Confidence != nil && (*p.Confidence < 0 || *p.Confidence > 100) {
		return apperr.Validation("confidence", "must be within [0,100]")
	}
	return nil
}
