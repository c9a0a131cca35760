// Package recognize 视觉识别的解析与校验。
// 识别服务本身是外部协作方，这里只负责把它的输出收拾干净。
package recognize

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/chenhan1218/BestBite/models"
)

// Response 识别候选结果。name/date 都为空表示「识别失败」，本身是合法回应。
type Response struct {
	ProductName string  `json:"product_name"`
	ExpiryDate  string  `json:"expiry_date"`
	Confidence  float64 `json:"confidence"`
	Notes       string  `json:"notes,omitempty"`
}

// Recognizer 外部分类器：图片字节进，候选结果出
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, contentType string) (Response, error)
}

// Func 便于用闭包当 Recognizer
type Func func(ctx context.Context, image []byte, contentType string) (Response, error)

func (f Func) Recognize(ctx context.Context, image []byte, contentType string) (Response, error) {
	return f(ctx, image, contentType)
}

// Parse 解析分类器的原始 JSON 输出，字段缺失或格式不对一律降级成
// 空的「识别失败」回应，信心度截断到 [0,100]。
func Parse(raw []byte) Response {
	var obj struct {
		ProductName string  `json:"product_name"`
		ExpiryDate  string  `json:"expiry_date"`
		Confidence  float64 `json:"confidence"`
		Notes       string  `json:"notes"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Response{Notes: "failed to parse classifier response"}
	}

	resp := Response{
		ProductName: strings.TrimSpace(obj.ProductName),
		ExpiryDate:  strings.TrimSpace(obj.ExpiryDate),
		Confidence:  obj.Confidence,
		Notes:       strings.TrimSpace(obj.Notes),
	}
	if resp.Confidence < 0 {
		resp.Confidence = 0
	}
	if resp.Confidence > 100 {
		resp.Confidence = 100
	}
	if resp.ExpiryDate != "" && !models.ValidDate(resp.ExpiryDate) {
		return Response{Notes: "invalid date format, expected YYYY-MM-DD"}
	}
	return resp
}

// Valid 校验候选结果：
//   - 名称和日期都为空 = 明确的识别失败，合法；
//   - 只有其一 = 不合法（半截结果不能用）；
//   - 两者都有 = 日期必须是真实的 YYYY-MM-DD。
func (r Response) Valid() bool {
	if r.ProductName == "" && r.ExpiryDate == "" {
		return true
	}
	if r.ProductName == "" || r.ExpiryDate == "" {
		return false
	}
	return models.ValidDate(r.ExpiryDate)
}

// Failed 是否为「识别失败」占位回应
func (r Response) Failed() bool {
	return r.ProductName == "" && r.ExpiryDate == ""
}
