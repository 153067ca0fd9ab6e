package rss

import (
	"strings"
	"time"
)

// dateLayouts 按优先级排列，前面的格式先匹配。
var dateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05Z",
}

// zoneOffsets 常见时区缩写对应的偏移（秒）。
// Go 解析 MST 布局时对未知缩写只记名字、偏移为 0，这里显式补上。
var zoneOffsets = map[string]int{
	"GMT":  0,
	"UTC":  0,
	"UT":   0,
	"Z":    0,
	"EST":  -5 * 3600,
	"EDT":  -4 * 3600,
	"CST":  -6 * 3600,
	"CDT":  -5 * 3600,
	"MST":  -7 * 3600,
	"MDT":  -6 * 3600,
	"PST":  -8 * 3600,
	"PDT":  -7 * 3600,
	"BST":  1 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"EET":  2 * 3600,
	"EEST": 3 * 3600,
	"JST":  9 * 3600,
	"AEST": 10 * 3600,
	"AEDT": 11 * 3600,
}

// ParseDate 解析订阅源中的发布时间。所有格式都不匹配时返回 false。
func ParseDate(text string) (time.Time, bool) {
	t, layout := parseDate(text)
	return t, layout != ""
}

// parseDate 返回解析结果和命中的布局，未命中时布局为空。
func parseDate(text string) (time.Time, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ""
	}
	for _, layout := range dateLayouts {
		// 以 UTC 为参照，结果不受宿主机时区影响
		t, err := time.ParseInLocation(layout, text, time.UTC)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "MST") {
			t = applyZoneAbbrev(t)
		}
		return t, layout
	}
	return time.Time{}, ""
}

// applyZoneAbbrev 按缩写表修正时区偏移。
// 不在表中的名字保留 Go 解析出的偏移：GMT+3 这类带偏移的名字已经换算过，未知缩写则为 UTC。
func applyZoneAbbrev(t time.Time) time.Time {
	name, _ := t.Zone()
	offset, ok := zoneOffsets[strings.ToUpper(name)]
	if !ok {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.FixedZone(name, offset))
}
