package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// Classifier 語句分類能力介面。實作以配置選擇，不以繼承切換：
// 測試與降級模式用 RuleClassifier，生產用 LLMClassifier。
type Classifier interface {
	Classify(ctx context.Context, utterance string) Intent
}

// Completer 外部補全服務能力介面
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// 解析 "label: <word>" 格式的回應（大小寫不敏感）
var labelPattern = regexp.MustCompile(`(?i)label:\s*(\w+)`)

// LLMClassifier 以外部補全服務為主要信號的分類器
type LLMClassifier struct {
	completer Completer
}

// NewLLMClassifier 創建 LLM 分類器
func NewLLMClassifier(completer Completer) *LLMClassifier {
	return &LLMClassifier{completer: completer}
}

// Classify 組裝含封閉標籤集與少樣本範例的提示，送到補全服務後
// 解析 label 標籤。解析不到、格式錯誤或服務失敗一律回 Chat。
func (c *LLMClassifier) Classify(ctx context.Context, utterance string) Intent {
	prompt := fmt.Sprintf(
		"You are a smart assistant. Classify the user's question into one of the categories:\n"+
			"- recommend (if user wants recipe suggestions based on ingredients or keywords)\n"+
			"- similar (if user wants similar dishes)\n"+
			"- scale (if user asks about changing servings or quantities)\n"+
			"- tutorial (if user is asking how to make a specific dish or recipe)\n"+
			"- chat (default for everything else)\n\n"+
			"Examples:\n"+
			"User question: What can I cook with chicken and potatoes?\nAnswer format: label: recommend\n"+
			"User question: Show me dishes similar to Kung Pao Chicken.\nAnswer format: label: similar\n"+
			"User question: Change the cake recipe for 12 people instead of 4.\nAnswer format: label: scale\n"+
			"User question: How do I make Chana Masala?\nAnswer format: label: tutorial\n"+
			"User question: Who invented the hamburger?\nAnswer format: label: chat\n\n"+
			"User question: %s\n"+
			"Answer format: label: <category>", utterance)

	response, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		// 上游超時或失敗降級為 chat，不往外拋
		common.LogWarn("意圖分類降級為 chat",
			zap.Error(err),
		)
		return Chat
	}

	match := labelPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(response)))
	if match == nil {
		common.LogDebug("分類回應中找不到 label 標籤")
		return Chat
	}
	return Normalize(match[1])
}

// RuleClassifier 確定性的關鍵詞規則分類器
type RuleClassifier struct{}

// NewRuleClassifier 創建規則分類器
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify 依固定關鍵詞規則分類，規則不命中時回 Chat
func (c *RuleClassifier) Classify(_ context.Context, utterance string) Intent {
	lower := strings.ToLower(utterance)

	switch {
	case containsAny(lower, "similar to", "similar", "dishes like", "相似", "類似", "类似"):
		return Similar
	case containsAny(lower, "scale", "servings", "serving", "portion", "double", "halve", "half", "份量", "人份", "減半", "减半", "加倍"):
		return Scale
	case containsAny(lower, "how do i make", "how to make", "how do you make", "怎麼做", "怎么做", "做法"):
		return Tutorial
	case containsAny(lower, "what can i cook", "what can i make", "recommend", "suggest", "i have", "我有", "推薦", "推荐"):
		return Recommend
	default:
		return Chat
	}
}

// containsAny 是否包含任一關鍵詞
func containsAny(text string, cues ...string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
