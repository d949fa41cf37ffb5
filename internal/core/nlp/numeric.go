package nlp

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// 數字樣式：分數優先於小數，小數優先於整數，
// 避免 "3/4" 被拆成 "3" 和 "/4"
var numberPattern = regexp.MustCompile(`\d+/\d+|\d+\.\d+|\d+`)

// NumberToken 文本中辨識到的一個數量
type NumberToken struct {
	Raw   string  // 原始片段，如 "1/2"
	Value float64 // 換算後的數值
}

// FindNumbers 依出現順序找出一行文本中的所有數量。
// 無法換算的片段（分母為零、溢位）直接略過，不回報錯誤。
func FindNumbers(line string) []NumberToken {
	var tokens []NumberToken
	for _, raw := range numberPattern.FindAllString(line, -1) {
		value, ok := parseNumber(raw)
		if !ok {
			continue
		}
		tokens = append(tokens, NumberToken{Raw: raw, Value: value})
	}
	return tokens
}

// parseNumber 換算單一數字片段
func parseNumber(raw string) (float64, bool) {
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		num, err1 := strconv.ParseFloat(raw[:i], 64)
		den, err2 := strconv.ParseFloat(raw[i+1:], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0, false
		}
		return num / den, true
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
