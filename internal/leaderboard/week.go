package leaderboard

import (
	"time"
)

// WeekWindowUTC 返回now所在ISO周的UTC窗口 [周一00:00, 下周一00:00)。
// 只依赖UTC日期，与服务器本地时区无关。
func WeekWindowUTC(now time.Time) (start time.Time, end time.Time) {
	now = now.UTC()
	// time.Weekday 以周日为0，换算成周一为0
	offset := (int(now.Weekday()) + 6) % 7
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
