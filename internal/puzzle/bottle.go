package puzzle

import (
	"errors"
	"math"
	"math/rand"
)

// BottleMaxGuesses 每日瓶子谜题可提交的次数。
const BottleMaxGuesses = 5

const initialOrderAttempts = 100

// ErrInvalidOrder 在提交的顺序不是瓶子编号的排列时返回。
var ErrInvalidOrder = errors.New("order must be a permutation of the bottle ids")

// Bottle 描述一个瓶子。
type Bottle struct {
	ID    int    `json:"id"`
	Color string `json:"color"`
	Emoji string `json:"emoji"`
}

// Bottles 返回固定的 5 个瓶子。
func Bottles() []Bottle {
	return []Bottle{
		{ID: 0, Color: "#FF6B6B", Emoji: "🔴"},
		{ID: 1, Color: "#4ECDC4", Emoji: "🔵"},
		{ID: 2, Color: "#FFE66D", Emoji: "🟡"},
		{ID: 3, Color: "#95E1D3", Emoji: "🟢"},
		{ID: 4, Color: "#FF8B94", Emoji: "🟣"},
	}
}

// BottlePuzzle 是某天的瓶子谜题，TargetOrder 不应在游戏结束前下发。
type BottlePuzzle struct {
	ID          int64    `json:"id"`
	Bottles     []Bottle `json:"bottles"`
	TargetOrder []int    `json:"-"`
	MaxGuesses  int      `json:"maxGuesses"`
}

// BottleFeedback 是一次提交的评估结果。
type BottleFeedback struct {
	CorrectCount int     `json:"correctCount"`
	GuessNumber  int     `json:"guessNumber"`
	Outcome      Outcome `json:"outcome"`
	Reason       string  `json:"reason,omitempty"`
}

// GenerateBottlePuzzle 以种子做 Fisher-Yates 洗牌得到目标顺序。
func GenerateBottlePuzzle(seed int64) BottlePuzzle {
	rng := NewSeededRandom(seed)
	bottles := Bottles()

	target := make([]int, len(bottles))
	for i, b := range bottles {
		target[i] = b.ID
	}
	for i := len(target) - 1; i > 0; i-- {
		j := int(math.Floor(rng.Next() * float64(i+1)))
		target[i], target[j] = target[j], target[i]
	}

	return BottlePuzzle{
		ID:          seed,
		Bottles:     bottles,
		TargetOrder: target,
		MaxGuesses:  BottleMaxGuesses,
	}
}

// CheckOrder 统计位置正确的瓶子数。
func CheckOrder(current, target []int) int {
	n := min(len(current), len(target))
	correct := 0
	for i := 0; i < n; i++ {
		if current[i] == target[i] {
			correct++
		}
	}
	return correct
}

// InitialOrder 生成一个与目标没有任何位置重合的起始顺序，尝试 100 次后接受最后一次结果。
func InitialOrder(p BottlePuzzle, rnd *rand.Rand) []int {
	ids := make([]int, len(p.Bottles))
	for i, b := range p.Bottles {
		ids[i] = b.ID
	}

	shuffled := make([]int, len(ids))
	for attempt := 0; attempt < initialOrderAttempts; attempt++ {
		copy(shuffled, ids)
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if CheckOrder(shuffled, p.TargetOrder) == 0 {
			break
		}
	}
	return shuffled
}

// EvaluateBottleGuess 评估第 guessNumber 次（从 1 开始）提交。
func EvaluateBottleGuess(p BottlePuzzle, order []int, guessNumber int) (BottleFeedback, error) {
	if !isPermutation(order, len(p.Bottles)) {
		return BottleFeedback{}, ErrInvalidOrder
	}

	fb := BottleFeedback{
		CorrectCount: CheckOrder(order, p.TargetOrder),
		GuessNumber:  guessNumber,
		Outcome:      OutcomeContinue,
	}
	switch {
	case fb.CorrectCount == len(p.TargetOrder):
		fb.Outcome = OutcomeWin
	case guessNumber >= p.MaxGuesses:
		fb.Outcome = OutcomeLoss
		fb.Reason = ReasonOutOfGuesses
	}
	return fb, nil
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, id := range order {
		if id < 0 || id >= n || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
