package intent

import "strings"

// Intent 使用者語句的分類結果，封閉集合
type Intent string

const (
	Recommend Intent = "recommend" // 依食材推薦食譜
	Similar   Intent = "similar"   // 找相似菜色
	Scale     Intent = "scale"     // 調整份量
	Tutorial  Intent = "tutorial"  // 詢問特定菜的做法
	Chat      Intent = "chat"      // 其他一律走閒聊
)

// 封閉集合成員表
var known = map[Intent]struct{}{
	Recommend: {},
	Similar:   {},
	Scale:     {},
	Tutorial:  {},
	Chat:      {},
}

// Normalize 把分類器輸出的原始標籤收斂到封閉集合。
// 集合外的任何值（含空字串、格式錯誤）一律回 Chat，
// 分類結果永遠不會阻塞管線。
func Normalize(raw string) Intent {
	label := Intent(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := known[label]; ok {
		return label
	}
	return Chat
}
