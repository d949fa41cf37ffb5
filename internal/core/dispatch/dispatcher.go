package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"recipe-assistant/internal/core/corpus"
	"recipe-assistant/internal/core/intent"
	"recipe-assistant/internal/core/match"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// Completer 外部補全服務能力介面（chat 直通與教學問答使用）
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Result 統一的路由結果：不論走哪個分支，呼叫端都拿到
// {intent, result|error}，可一致地渲染回覆。
type Result struct {
	Intent      intent.Intent       `json:"intent"`
	Answer      string              `json:"answer,omitempty"`
	Matches     []match.Result      `json:"matches,omitempty"`
	ScaledLines []string            `json:"scaled_lines,omitempty"`
	RecipeName  string              `json:"recipe_name,omitempty"`
	Err         *common.CustomError `json:"-"`
}

// Dispatcher 查詢路由器。單一請求 = 單一
// classify → extract → match → respond 管線；除了只讀語料庫與
// 傳入的歷史外不持有狀態，可安全並行處理多個請求。
type Dispatcher struct {
	classifier intent.Classifier
	extractor  *nlp.Extractor
	completer  Completer
	embed      match.EmbedFunc
	topK       int
}

// New 創建路由器
func New(classifier intent.Classifier, extractor *nlp.Extractor, completer Completer, embed match.EmbedFunc, topK int) *Dispatcher {
	if topK <= 0 {
		topK = match.DefaultTopK
	}
	return &Dispatcher{
		classifier: classifier,
		extractor:  extractor,
		completer:  completer,
		embed:      embed,
		topK:       topK,
	}
}

// 從 "similar to X" 句型取出目標菜名
var similarTargetPattern = regexp.MustCompile(`(?i)similar to\s+(.+)`)

// Route 路由一句使用者語句：分類意圖、擷取參數、執行對應處理器。
// 缺少可選輸入時不拋錯，以結構化錯誤回傳。
func (d *Dispatcher) Route(ctx context.Context, utterance string, history *session.History, store corpus.Store) *Result {
	label := d.classifier.Classify(ctx, utterance)
	common.LogInfo("意圖分類完成",
		zap.String("intent", string(label)),
	)

	switch label {
	case intent.Recommend:
		return d.routeRecommend(ctx, utterance, store)
	case intent.Similar:
		return d.routeSimilar(ctx, utterance, history, store)
	case intent.Scale:
		return d.routeScale(utterance, history, store)
	case intent.Tutorial:
		return d.routeTutorial(ctx, utterance, history, store)
	default:
		return d.routeChat(ctx, utterance, history)
	}
}

// routeRecommend 依擷取到的食材做關鍵詞重疊排序
func (d *Dispatcher) routeRecommend(ctx context.Context, utterance string, store corpus.Store) *Result {
	ingredients := d.extractor.Extract(ctx, utterance)
	if len(ingredients) == 0 {
		return &Result{Intent: intent.Recommend, Err: common.ErrExtractionEmpty}
	}

	common.LogInfo("已擷取食材",
		zap.Strings("ingredients", ingredients),
	)

	matches := match.ByIngredients(ingredients, store.GetAll(), d.topK)
	if len(matches) == 0 {
		return &Result{
			Intent: intent.Recommend,
			Answer: "No matching recipes found.",
		}
	}

	var sb strings.Builder
	sb.WriteString("Based on your input, here are some suggested recipes:\n")
	for _, m := range matches {
		sb.WriteString(fmt.Sprintf("- Suggested recipe: %s (matched ingredients: %d)\n", m.Name, int(m.Score)))
	}

	// 首位推薦記為本輪食譜，後續 scale/similar 可由歷史接續
	return &Result{
		Intent:     intent.Recommend,
		Answer:     strings.TrimRight(sb.String(), "\n"),
		Matches:    matches,
		RecipeName: matches[0].Name,
	}
}

// routeSimilar 以嵌入相似度找相似菜色；目標菜名取自語句，
// 取不到時退回會話中最後提到的食譜
func (d *Dispatcher) routeSimilar(ctx context.Context, utterance string, history *session.History, store corpus.Store) *Result {
	target := extractSimilarTarget(utterance)
	if target == "" && history != nil {
		target = history.LastRecipe()
	}
	if target == "" {
		return &Result{Intent: intent.Similar, Err: common.ErrMissingContext}
	}

	matches, err := match.BySimilarity(ctx, target, store.GetAll(), d.embed, d.topK)
	if err != nil {
		return &Result{Intent: intent.Similar, RecipeName: target, Err: common.AsCustomError(err)}
	}
	if len(matches) == 0 {
		return &Result{
			Intent:     intent.Similar,
			RecipeName: target,
			Answer:     "Sorry, I couldn't find any similar recipes.",
		}
	}

	var sb strings.Builder
	sb.WriteString("Here are some dishes similar to what you mentioned:\n")
	for _, m := range matches {
		sb.WriteString(fmt.Sprintf("- Similar recipe: %s (similarity: %.2f)\n", m.Name, m.Score))
	}

	return &Result{
		Intent:     intent.Similar,
		Answer:     strings.TrimRight(sb.String(), "\n"),
		Matches:    matches,
		RecipeName: target,
	}
}

// routeScale 縮放會話中最後提到的食譜的配料份量
func (d *Dispatcher) routeScale(utterance string, history *session.History, store corpus.Store) *Result {
	factor := nlp.ExtractScaleFactor(utterance)

	var recipeName string
	if history != nil {
		recipeName = history.LastRecipe()
	}
	if recipeName == "" {
		return &Result{Intent: intent.Scale, Err: common.ErrMissingContext}
	}

	doc, err := store.GetByName(recipeName)
	if err != nil {
		return &Result{Intent: intent.Scale, RecipeName: recipeName, Err: common.AsCustomError(err)}
	}

	lines := doc.IngredientLines()
	if len(lines) == 0 {
		return &Result{Intent: intent.Scale, RecipeName: recipeName, Err: common.ErrMissingContext}
	}

	scaled := nlp.ScaleLines(lines, factor)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Here are the adjusted ingredients for %gx servings:\n", factor))
	sb.WriteString(strings.Join(scaled, "\n"))

	return &Result{
		Intent:      intent.Scale,
		Answer:      sb.String(),
		ScaledLines: scaled,
		RecipeName:  recipeName,
	}
}

// routeTutorial 教學問答：語句中有語料庫內的菜名時帶食譜內文問 LLM，
// 否則與 chat 一致直通
func (d *Dispatcher) routeTutorial(ctx context.Context, utterance string, history *session.History, store corpus.Store) *Result {
	doc, found := findMentionedRecipe(utterance, store)
	if !found {
		result := d.routeChat(ctx, utterance, history)
		result.Intent = intent.Tutorial
		return result
	}

	prompt := fmt.Sprintf(
		"You are a professional chef assistant. Answer the user's question using this recipe:\n\n%s\n\nUser question: %s",
		doc.Text, utterance)

	answer, err := d.completer.Complete(ctx, prompt)
	if err != nil {
		// 上游失敗時直接回食譜原文，教學意圖永遠有回覆
		common.LogWarn("教學問答降級為食譜原文",
			zap.String("recipe", doc.Name),
			zap.Error(err),
		)
		answer = doc.Text
	}

	return &Result{
		Intent:     intent.Tutorial,
		Answer:     answer,
		RecipeName: doc.Name,
	}
}

// routeChat 閒聊直通外部補全服務，失敗時以道歉訊息降級，永不失敗
func (d *Dispatcher) routeChat(ctx context.Context, utterance string, history *session.History) *Result {
	answer, err := d.completer.Complete(ctx, chatPrompt(utterance, history))
	if err != nil {
		common.LogWarn("閒聊直通降級",
			zap.Error(err),
		)
		answer = "抱歉，我現在無法回應，請稍後再試。"
	}
	return &Result{Intent: intent.Chat, Answer: answer}
}

// chatPrompt 組裝帶會話脈絡的閒聊提示
func chatPrompt(utterance string, history *session.History) string {
	var sb strings.Builder
	sb.WriteString("您是一位專業厨師助手，請根據菜譜資料回答用戶問題。\n")
	sb.WriteString("回答時請：\n")
	sb.WriteString("1. 明確說明菜譜名稱\n")
	sb.WriteString("2. 分步驟說明製作方法\n")
	sb.WriteString("3. 給出烹飪小貼士\n\n")

	if history != nil {
		turns := history.Turns()
		// 只帶最近幾輪，避免提示過長
		const maxTurns = 6
		start := 0
		if len(turns) > maxTurns {
			start = len(turns) - maxTurns
		}
		for _, turn := range turns[start:] {
			sb.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Text))
		}
	}

	sb.WriteString(fmt.Sprintf("user: %s", utterance))
	return sb.String()
}

// extractSimilarTarget 從語句取出 "similar to" 之後的菜名
func extractSimilarTarget(utterance string) string {
	groups := similarTargetPattern.FindStringSubmatch(utterance)
	if groups == nil {
		return ""
	}
	target := strings.TrimSpace(groups[1])
	return strings.TrimRight(target, "?!.。？！")
}

// findMentionedRecipe 掃描語料庫，找語句中提到的第一個菜名
func findMentionedRecipe(utterance string, store corpus.Store) (corpus.Document, bool) {
	lower := strings.ToLower(utterance)
	for _, doc := range store.GetAll() {
		name := strings.ToLower(strings.TrimSpace(doc.Name))
		if name != "" && strings.Contains(lower, name) {
			return doc, true
		}
	}
	return corpus.Document{}, false
}
