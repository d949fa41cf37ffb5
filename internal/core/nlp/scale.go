package nlp

import (
	"math"
	"strconv"
	"strings"
)

// 倍數提示詞。先看關鍵詞，再退回找數字。
var (
	halvingCues  = []string{"half", "halve", "減半", "减半", "一半"}
	doublingCues = []string{"double", "twice", "加倍", "雙倍", "兩倍", "两倍"}
)

// ExtractScaleFactor 從使用者語句中取出倍數。
// 減半提示 → 0.5；加倍提示 → 2.0；否則取第一個數字；
// 都沒有時回傳 1.0（不改變份量）。結果恆為正數。
func ExtractScaleFactor(text string) float64 {
	lower := strings.ToLower(text)

	for _, cue := range halvingCues {
		if strings.Contains(lower, cue) {
			return 0.5
		}
	}
	for _, cue := range doublingCues {
		if strings.Contains(lower, cue) {
			return 2.0
		}
	}

	for _, token := range FindNumbers(text) {
		if token.Value > 0 {
			return token.Value
		}
	}

	return 1.0
}

// ScaleLines 將每行配料中的數量乘上倍數，四捨五入到小數兩位。
// 每個數字片段只替換第一次出現的位置，避免重複縮放；
// 沒有數字的行原樣通過。輸出長度與輸入相同。
func ScaleLines(lines []string, factor float64) []string {
	scaled := make([]string, 0, len(lines))
	if factor == 1.0 {
		// 倍數為 1 時不重寫數字，保持原始文本
		return append(scaled, lines...)
	}
	for _, line := range lines {
		for _, token := range FindNumbers(line) {
			value := roundTo2(token.Value * factor)
			line = strings.Replace(line, token.Raw, formatQuantity(value), 1)
		}
		scaled = append(scaled, line)
	}
	return scaled
}

// roundTo2 四捨五入到小數兩位
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatQuantity 格式化縮放後的數量：去掉多餘的尾零，但至少保留一位小數
func formatQuantity(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	for strings.HasSuffix(s, "0") && !strings.HasSuffix(s, ".0") {
		s = s[:len(s)-1]
	}
	return s
}
