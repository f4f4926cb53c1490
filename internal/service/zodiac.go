package service

import (
	"strings"
	"time"
)

// ZodiacInsight 是星座及其简短描述。
type ZodiacInsight struct {
	Sign string `json:"sign"`
	Note string `json:"note"`
}

var zodiacInsights = []ZodiacInsight{
	{Sign: "Aries", Note: "Bold trailblazers who thrive on courageous action."},
	{Sign: "Taurus", Note: "Grounded nurturers that value stability and loyalty."},
	{Sign: "Gemini", Note: "Curious communicators energized by sharing ideas."},
	{Sign: "Cancer", Note: "Empathetic protectors with a deep sense of care."},
	{Sign: "Leo", Note: "Warm-hearted leaders who inspire by example."},
	{Sign: "Virgo", Note: "Detail-focused helpers dedicated to practical service."},
	{Sign: "Libra", Note: "Harmony seekers balancing fairness and connection."},
	{Sign: "Scorpio", Note: "Powerful transformers who value emotional truth."},
	{Sign: "Sagittarius", Note: "Optimistic explorers chasing meaning and wisdom."},
	{Sign: "Capricorn", Note: "Disciplined builders committed to long-term impact."},
	{Sign: "Aquarius", Note: "Visionary humanitarians driven by innovation."},
	{Sign: "Pisces", Note: "Compassionate dreamers attuned to collective healing."},
}

// 每个星座的起始日（月、日），按年内顺序排列，摩羯座跨年。
var zodiacStarts = []struct {
	month time.Month
	day   int
	sign  string
}{
	{time.January, 20, "Aquarius"},
	{time.February, 19, "Pisces"},
	{time.March, 21, "Aries"},
	{time.April, 20, "Taurus"},
	{time.May, 21, "Gemini"},
	{time.June, 21, "Cancer"},
	{time.July, 23, "Leo"},
	{time.August, 23, "Virgo"},
	{time.September, 23, "Libra"},
	{time.October, 23, "Scorpio"},
	{time.November, 22, "Sagittarius"},
	{time.December, 22, "Capricorn"},
}

// ZodiacInsights 返回 12 星座列表的副本。
func ZodiacInsights() []ZodiacInsight {
	return append([]ZodiacInsight(nil), zodiacInsights...)
}

// ZodiacForDate 返回生日对应的星座。
func ZodiacForDate(t time.Time) string {
	sign := "Capricorn"
	for _, start := range zodiacStarts {
		if t.Month() > start.month || (t.Month() == start.month && t.Day() >= start.day) {
			sign = start.sign
		}
	}
	return sign
}

// ZodiacForBirthday 解析 YYYY-MM-DD 并返回星座。
func ZodiacForBirthday(birthday string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(birthday))
	if err != nil {
		return "", ErrInvalidBirthday
	}
	return ZodiacForDate(t), nil
}

// InsightFor 返回星座描述，未知星座返回空。
func InsightFor(sign string) ZodiacInsight {
	for _, z := range zodiacInsights {
		if strings.EqualFold(z.Sign, sign) {
			return z
		}
	}
	return ZodiacInsight{Sign: sign}
}
