// Package puzzle 生成每日小游戏（瓶子排序与策略数字谜题），同一种子在任何地方得到相同的谜题。
package puzzle

import (
	"math"
	"time"
)

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// SeededRandom 是线性同余生成器，输出需与前端保持逐位一致。
type SeededRandom struct {
	state int64
}

// NewSeededRandom 创建生成器，负数种子先归一到 [0, modulus)。
func NewSeededRandom(seed int64) *SeededRandom {
	seed %= lcgModulus
	if seed < 0 {
		seed += lcgModulus
	}
	return &SeededRandom{state: seed}
}

// Next 推进状态并返回 [0,1) 内的值。
func (r *SeededRandom) Next() float64 {
	r.state = (r.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.state) / lcgModulus
}

// NextInt 返回闭区间 [min, max] 内的整数。
func (r *SeededRandom) NextInt(min, max int) int {
	return int(math.Floor(r.Next()*float64(max-min+1))) + min
}

// DailySeed 返回 t 所在时区的年内第几天（1 月 1 日为 1）。
func DailySeed(t time.Time) int64 {
	return int64(t.YearDay())
}
