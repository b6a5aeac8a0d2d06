package fee

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Quote 信息费报价
type Quote struct {
	Tier        string  `json:"tier"`
	Frequency   int     `json:"frequency"`
	Hours       float64 `json:"hours"`
	HourlyPrice float64 `json:"hourly_price"`
	Amount      float64 `json:"amount"`
	PriceValid  bool    `json:"price_valid"`
	Note        string  `json:"note"`
}

// PriceFormatNote 价格无法解析时的提示
const PriceFormatNote = "价格格式错误"

var leadingNumber = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)

// ParseHourlyPrice 从 "¥100/小时" 这类展示文案中取出单价
// 全角字符先转半角，再去掉数字和小数点以外的字符，取开头的数字部分
// 注意 "¥100 - ¥200" 会被拼成 100200，这是沿用下来的已知问题
func ParseHourlyPrice(text string) (float64, bool) {
	narrow := width.Narrow.String(text)
	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, narrow)
	m := leadingNumber.FindString(digits)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Calculator 基于课时表的信息费计算器
type Calculator struct {
	table *Table
}

// NewCalculator table 为 nil 时使用内置课时表
func NewCalculator(table *Table) *Calculator {
	if table == nil {
		table = DefaultTable()
	}
	return &Calculator{table: table}
}

// Compute 计算信息费，纯函数
func (c *Calculator) Compute(grade string, weeklyFrequency int, hourlyPriceText string) Quote {
	freq := weeklyFrequency
	if freq < 1 {
		freq = 1
	}
	tier := c.table.match(grade)
	q := Quote{
		Tier:      tier.Name,
		Frequency: freq,
		Hours:     tier.hours(freq),
	}
	price, ok := ParseHourlyPrice(hourlyPriceText)
	if !ok {
		q.Note = PriceFormatNote
		return q
	}
	q.HourlyPrice = price
	q.PriceValid = true
	q.Amount = q.Hours * price
	q.Note = fmt.Sprintf("%s - 每周%d次", grade, freq)
	return q
}

// Compute 使用内置课时表计算
func Compute(grade string, weeklyFrequency int, hourlyPriceText string) Quote {
	return NewCalculator(nil).Compute(grade, weeklyFrequency, hourlyPriceText)
}
