// Package timeutil 提供 HH:MM 文本与分钟数之间的纯函数换算
package timeutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dienstplan/dienstplan/pkg/errors"
)

// MinutesPerDay 一天的分钟数
const MinutesPerDay = 24 * 60

// ToMinutes 解析 HH:MM 为零点起的分钟数
// 小时超过23或分钟超过59视为非法输入
func ToMinutes(text string) (int, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, errors.MalformedTime(text)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.MalformedTime(text)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.MalformedTime(text)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, errors.MalformedTime(text)
	}

	return hour*60 + minute, nil
}

// ToText 将分钟数格式化为 HH:MM，超出一天的值先取模
func ToText(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// WrapDuration 计算跨午夜安全的时长（分钟）
// end 早于 start 时视为跨天
func WrapDuration(start, end int) int {
	d := (end - start) % MinutesPerDay
	if d < 0 {
		d += MinutesPerDay
	}
	return d
}
