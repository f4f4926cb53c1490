package puzzle

import (
	"fmt"
	"math"
	"strconv"
)

// NumericMaxGuesses 每日数字谜题可提交的次数。
const NumericMaxGuesses = 5

// Outcome 表示一次提交后的游戏状态。
type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeWin      Outcome = "win"
	OutcomeLoss     Outcome = "loss"
)

// 结束原因
const (
	ReasonExact        = "exact"
	ReasonTrap         = "trap"
	ReasonWindow       = "window"
	ReasonOutOfGuesses = "out-of-guesses"
)

// 方向与接近程度
const (
	DirectionHigher = "higher"
	DirectionLower  = "lower"

	ProximityVeryClose = "very-close"
	ProximityClose     = "close"
	ProximityFar       = "far"
	ProximityVeryFar   = "very-far"
)

type numericFormula struct {
	name string
	calc func(x, y, z int) int
}

var targetFormulas = []numericFormula{
	{name: "X + 2*Y - Z", calc: func(x, y, z int) int { return x + 2*y - z }},
	{name: "X*Y - Z", calc: func(x, y, z int) int { return x*y - z }},
	{name: "X + Y + Z", calc: func(x, y, z int) int { return x + y + z }},
	{name: "2*X + Y - Z", calc: func(x, y, z int) int { return 2*x + y - z }},
	{name: "X*2 + Y*3 - Z", calc: func(x, y, z int) int { return x*2 + y*3 - z }},
}

var trapFormulas = []func(x, y, z int) int{
	func(x, y, z int) int { return x + y + z },
	func(x, y, z int) int { return x * y },
	func(x, y, z int) int { return x + y },
	func(x, y, z int) int { return y + z },
	func(x, y, z int) int { return x*2 + y },
	func(x, y, z int) int { return y*2 + z },
}

// HiddenValues 是谜题的三个隐藏变量。
type HiddenValues struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Clues 分三个阶段逐步揭示。
type Clues struct {
	Stage1 []string `json:"stage1"`
	Stage2 []string `json:"stage2"`
	Stage3 []string `json:"stage3"`
}

// ProbabilisticClue 是大约以 Accuracy 概率成立的提示。
type ProbabilisticClue struct {
	Text     string  `json:"text"`
	Accuracy float64 `json:"accuracy"`
}

// NumericPuzzle 是完整的谜题，包含目标与陷阱，只在服务端使用。
type NumericPuzzle struct {
	ID                 int64
	Hidden             HiddenValues
	Target             int
	Formula            string
	Traps              []int
	MinWin             int
	MaxWin             int
	Clues              Clues
	ProbabilisticClues []ProbabilisticClue
	MaxGuesses         int
	Prompt             string
}

// PublicNumericPuzzle 是可以下发给客户端的视图。
type PublicNumericPuzzle struct {
	ID                 int64               `json:"id"`
	Clues              Clues               `json:"clues"`
	ProbabilisticClues []ProbabilisticClue `json:"probabilisticClues"`
	MaxGuesses         int                 `json:"maxGuesses"`
	Prompt             string              `json:"prompt"`
}

// Reveal 在游戏结束后展示答案。
type Reveal struct {
	Hidden  HiddenValues `json:"hidden"`
	Target  int          `json:"target"`
	Formula string       `json:"formula"`
	Traps   []int        `json:"traps"`
	MinWin  int          `json:"minWin"`
	MaxWin  int          `json:"maxWin"`
}

// GuessFeedback 是一次数字猜测的结果。
type GuessFeedback struct {
	Outcome     Outcome `json:"outcome"`
	Reason      string  `json:"reason,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	Proximity   string  `json:"proximity,omitempty"`
	Percentage  float64 `json:"percentage,omitempty"`
	Message     string  `json:"message"`
	GuessNumber int     `json:"guessNumber"`
}

// GenerateNumericPuzzle 按固定的随机数抽取顺序生成谜题。
func GenerateNumericPuzzle(seed int64) NumericPuzzle {
	rng := NewSeededRandom(seed)

	x := rng.NextInt(10, 99)
	y := rng.NextInt(10, 99)
	z := rng.NextInt(10, 99)

	formula := targetFormulas[rng.NextInt(0, len(targetFormulas)-1)]
	target := formula.calc(x, y, z)

	numTraps := 3 + rng.NextInt(0, 2)
	traps := make([]int, 0, numTraps)
	seen := make(map[int]bool, numTraps)
	for i := 0; i < numTraps; i++ {
		v := trapFormulas[rng.NextInt(0, len(trapFormulas)-1)](x, y, z)
		if v == target || v <= 0 || seen[v] {
			continue
		}
		seen[v] = true
		traps = append(traps, v)
	}
	if len(traps) == 0 {
		for _, v := range []int{target + 1, target - 1} {
			if v > 0 {
				traps = append(traps, v)
			}
		}
	}

	margin := max(1, int(math.Floor(float64(target)*0.03)))

	clues := Clues{
		Stage1: []string{
			"The target is derived from three hidden values: X, Y, and Z",
			fmt.Sprintf("The target value is between %d and %d",
				max(1, int(math.Floor(float64(target)*0.5))), int(math.Floor(float64(target)*2))),
		},
		Stage2: []string{
			pick(x > y, "X is greater than Y", "Y is greater than or equal to X"),
			pick(z%2 == 0, "Z is an even number", "Z is an odd number"),
			pick(digitSum(x+z) < 15, "The sum of digits of (X + Z) is less than 15", "The sum of digits of (X + Z) is 15 or more"),
		},
		Stage3: []string{
			pick(x%3 == 0, "X is divisible by 3", "X is not divisible by 3"),
			fmt.Sprintf("One of the hidden values is a multiple of %d", rng.NextInt(2, 6)),
			"The relationship involves: " + formula.name,
		},
	}

	return NumericPuzzle{
		ID:      seed,
		Hidden:  HiddenValues{X: x, Y: y, Z: z},
		Target:  target,
		Formula: formula.name,
		Traps:   traps,
		MinWin:  target - margin,
		MaxWin:  target + margin,
		Clues:   clues,
		ProbabilisticClues: []ProbabilisticClue{
			{Text: fmt.Sprintf("Higher than %d about 70%% of the time", int(math.Floor(float64(target)*0.7))), Accuracy: 0.7},
			{Text: fmt.Sprintf("Odd/even ratio favors %s numbers 2:1", pick(target%2 == 0, "even", "odd")), Accuracy: 0.67},
		},
		MaxGuesses: NumericMaxGuesses,
		Prompt:     "Daily Challenge: Find the hidden derived value",
	}
}

// Public 去掉隐藏变量、目标与陷阱。
func (p NumericPuzzle) Public() PublicNumericPuzzle {
	return PublicNumericPuzzle{
		ID:                 p.ID,
		Clues:              p.Clues,
		ProbabilisticClues: p.ProbabilisticClues,
		MaxGuesses:         p.MaxGuesses,
		Prompt:             p.Prompt,
	}
}

// Reveal 返回结束后可展示的答案。
func (p NumericPuzzle) Reveal() Reveal {
	return Reveal{
		Hidden:  p.Hidden,
		Target:  p.Target,
		Formula: p.Formula,
		Traps:   p.Traps,
		MinWin:  p.MinWin,
		MaxWin:  p.MaxWin,
	}
}

// IsTrap 判断猜测是否落在陷阱上。
func (p NumericPuzzle) IsTrap(guess int) bool {
	for _, t := range p.Traps {
		if t == guess {
			return true
		}
	}
	return false
}

// InWinningZone 判断猜测是否在获胜区间内且不等于目标本身。
func (p NumericPuzzle) InWinningZone(guess int) bool {
	return guess >= p.MinWin && guess <= p.MaxWin && guess != p.Target
}

// EvaluateGuess 依次检查：命中目标、命中陷阱、落入获胜区间，否则给出方向提示。
// 第 MaxGuesses 次仍未结束时判负。
func EvaluateGuess(p NumericPuzzle, guess, guessNumber int) GuessFeedback {
	fb := GuessFeedback{GuessNumber: guessNumber}

	switch {
	case guess == p.Target:
		fb.Outcome, fb.Reason = OutcomeLoss, ReasonExact
		fb.Message = "Exact answer, you hit the target! 💥"
		return fb
	case p.IsTrap(guess):
		fb.Outcome, fb.Reason = OutcomeLoss, ReasonTrap
		fb.Message = "Trap hit! That's a forbidden value! 🚫"
		return fb
	case p.InWinningZone(guess):
		fb.Outcome, fb.Reason = OutcomeWin, ReasonWindow
		fb.Message = "Perfectly imperfect! You win! 🎯"
		return fb
	}

	fb.Outcome = OutcomeContinue
	fb.Direction = DirectionLower
	if guess < p.Target {
		fb.Direction = DirectionHigher
	}
	fb.Percentage, fb.Proximity = proximity(guess, p.Target)
	fb.Message = feedbackMessage(fb.Direction, fb.Proximity)

	if guessNumber >= p.MaxGuesses {
		fb.Outcome, fb.Reason = OutcomeLoss, ReasonOutOfGuesses
		fb.Message = "Out of guesses! " + fb.Message
	}
	return fb
}

// proximity 以 |guess-target|/|target| 计算百分比，目标为 0 时视为很远。
func proximity(guess, target int) (float64, string) {
	if target == 0 {
		return 0, ProximityVeryFar
	}
	pct := math.Abs(float64(guess-target)) / math.Abs(float64(target)) * 100
	rounded := math.Round(pct*10) / 10

	switch {
	case pct <= 3:
		return rounded, ProximityVeryClose
	case pct <= 10:
		return rounded, ProximityClose
	case pct <= 25:
		return rounded, ProximityFar
	default:
		return rounded, ProximityVeryFar
	}
}

func feedbackMessage(direction, prox string) string {
	arrow := "↓"
	if direction == DirectionHigher {
		arrow = "↑"
	}
	label := "❄️ Very far"
	switch prox {
	case ProximityVeryClose:
		label = "🔥 Very close"
	case ProximityClose:
		label = "😊 Close"
	case ProximityFar:
		label = "😐 Far"
	}
	return arrow + " " + label
}

func digitSum(n int) int {
	sum := 0
	for _, r := range strconv.Itoa(n) {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	return sum
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
