package match

import (
	"context"
	"math"
	"sort"
	"strings"

	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultTopK 預設回傳的食譜數
const DefaultTopK = 3

// Result 一筆排序結果。Score 的語義依排序方式而異
// （重疊計數或餘弦相似度），兩者不可互相比較。
type Result struct {
	Name  string  `json:"recipe_name"`
	Score float64 `json:"score"`
}

// EmbedFunc 外部嵌入服務能力介面
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// ByIngredients 依關鍵詞重疊度排序食譜：每個關鍵詞在配料分節中
// 命中（大小寫不敏感的子串比對）記 1 分，零分的食譜不列入，
// 分數遞減排序，同分維持語料庫順序。
func ByIngredients(ingredients []string, docs []corpus.Document, topK int) []Result {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var results []Result
	for _, doc := range docs {
		section := strings.ToLower(doc.IngredientSection())
		if section == "" {
			continue
		}
		score := 0
		for _, ing := range ingredients {
			if strings.Contains(section, strings.ToLower(ing)) {
				score++
			}
		}
		if score > 0 {
			results = append(results, Result{Name: doc.Name, Score: float64(score)})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// BySimilarity 依嵌入向量的餘弦相似度找與目標菜相似的食譜。
// 目標本身不列入結果；目標不在語料庫時回傳 TARGET_NOT_FOUND。
func BySimilarity(ctx context.Context, targetName string, docs []corpus.Document, embed EmbedFunc, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	targetIdx := -1
	for i, doc := range docs {
		if strings.EqualFold(strings.TrimSpace(doc.Name), strings.TrimSpace(targetName)) {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil, common.ErrTargetNotFound
	}

	targetVec, err := embed(ctx, docs[targetIdx].Text)
	if err != nil {
		return nil, common.ErrUpstreamFailure.WithCause(err)
	}

	var results []Result
	for i, doc := range docs {
		if i == targetIdx {
			continue
		}
		vec, err := embed(ctx, doc.Text)
		if err != nil {
			// 單一候選嵌入失敗只跳過該筆，保全其餘結果
			common.LogWarn("候選食譜嵌入失敗，略過",
				zap.String("recipe", doc.Name),
				zap.Error(err),
			)
			continue
		}
		results = append(results, Result{Name: doc.Name, Score: cosine(targetVec, vec)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// cosine 兩向量的餘弦相似度，範圍 [-1, 1]；零向量回 0
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
