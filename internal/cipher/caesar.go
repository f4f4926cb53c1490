// Package cipher 实现每日善行句子的凯撒密码编解码。
package cipher

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const alphabetSize = 26

// Encoded 是一次编码的结果，DecodeShift 是给用户的解码提示。
type Encoded struct {
	CipherText  string `json:"cipherText"`
	Shift       int    `json:"-"`
	DecodeShift int    `json:"decodeShift"`
}

// Codec 持有位移来源，测试中可注入固定种子。
type Codec struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewCodec 使用给定随机源创建编码器，rnd 为空时按当前时间播种。
func NewCodec(rnd *rand.Rand) *Codec {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Codec{rnd: rnd}
}

var defaultCodec = NewCodec(nil)

// Encode 以 [1,25] 内的随机位移编码句子。
func Encode(sentence string) Encoded {
	return defaultCodec.Encode(sentence)
}

// Encode 以 [1,25] 内的随机位移编码句子。
func (c *Codec) Encode(sentence string) Encoded {
	c.mu.Lock()
	shift := c.rnd.Intn(alphabetSize-1) + 1
	c.mu.Unlock()
	return EncodeWithShift(sentence, shift)
}

// EncodeWithShift 使用指定位移编码。
func EncodeWithShift(sentence string, shift int) Encoded {
	return Encoded{
		CipherText:  Rotate(sentence, shift),
		Shift:       shift,
		DecodeShift: DecodeShift(shift),
	}
}

// DecodeShift 返回 (26 - shift) mod 26，结果为 0 时展示为 26。
func DecodeShift(shift int) int {
	d := ((alphabetSize-shift)%alphabetSize + alphabetSize) % alphabetSize
	if d == 0 {
		return alphabetSize
	}
	return d
}

// Decode 用解码位移还原密文。
func Decode(cipherText string, decodeShift int) string {
	return Rotate(cipherText, decodeShift)
}

// Rotate 只移动 ASCII 字母，大小写各自循环，其余字符原样保留。
func Rotate(text string, shift int) string {
	shift = ((shift % alphabetSize) + alphabetSize) % alphabetSize
	if shift == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	// 按字节处理，非 ASCII 与非法 UTF-8 字节原样保留
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte('a' + (c-'a'+byte(shift))%alphabetSize)
		case c >= 'A' && c <= 'Z':
			b.WriteByte('A' + (c-'A'+byte(shift))%alphabetSize)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Matches 判断用户答案与原句是否一致：忽略首尾空白、连续空白与大小写。
func Matches(answer, plain string) bool {
	return normalizeAnswer(answer) == normalizeAnswer(plain)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
