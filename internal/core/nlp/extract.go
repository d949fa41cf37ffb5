package nlp

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// Completer 外部補全服務能力介面（LLM 關鍵字擷取的後備來源）
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Strategy 單一擷取策略。回傳空切片代表「沒擷取到」，屬合法結果而非錯誤。
type Strategy interface {
	Name() string
	TryExtract(ctx context.Context, text string) ([]string, error)
}

// Extractor 食材擷取器：依優先順序嘗試策略，第一個非空結果勝出
type Extractor struct {
	strategies []Strategy
}

// NewExtractor 創建食材擷取器。completer 可為 nil，此時不啟用 LLM 後備策略。
func NewExtractor(completer Completer) *Extractor {
	strategies := []Strategy{
		quotedStrategy{},
		possessionStrategy{},
	}
	if completer != nil {
		strategies = append(strategies, llmKeywordStrategy{completer: completer})
	}
	return &Extractor{strategies: strategies}
}

// Extract 從語句中擷取食材清單。所有策略皆空時回傳空切片；
// 呼叫端負責對使用者呈現「未辨識出食材」。
func (e *Extractor) Extract(ctx context.Context, text string) []string {
	for _, strategy := range e.strategies {
		items, err := strategy.TryExtract(ctx, text)
		if err != nil {
			// 策略失敗視同未擷取到，繼續嘗試下一個
			common.LogWarn("食材擷取策略失敗",
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
			continue
		}
		if len(items) > 0 {
			common.LogDebug("食材擷取成功",
				zap.String("strategy", strategy.Name()),
				zap.Int("count", len(items)),
			)
			return items
		}
	}
	return nil
}

// 清單分隔符：半形/全形逗號、頓號、以及英文 and
var listSeparatorPattern = regexp.MustCompile(`\s*(?:,|，|、|\band\b)\s*`)

// splitList 依分隔符切開清單，去除空項
func splitList(text string) []string {
	var items []string
	for _, part := range listSeparatorPattern.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

// ---------------- 策略一：引號片語 ----------------

// 成對的引號樣式，取第一個命中的配對內容
var quotedPattern = regexp.MustCompile(`"([^"]+)"|“([^”]+)”|「([^」]+)」|『([^』]+)』|'([^']+)'`)

type quotedStrategy struct{}

func (quotedStrategy) Name() string { return "quoted" }

func (quotedStrategy) TryExtract(_ context.Context, text string) ([]string, error) {
	match := quotedPattern.FindStringSubmatch(text)
	if match == nil {
		return nil, nil
	}
	for _, group := range match[1:] {
		if group != "" {
			return splitList(group), nil
		}
	}
	return nil, nil
}

// ---------------- 策略二：持有句型 ----------------

// "I have X, Y" 類的句型開頭
var possessionPattern = regexp.MustCompile(`(?i)\b(?:i have|i've got|i got|containing|using)\b|我有|有了`)

type possessionStrategy struct{}

func (possessionStrategy) Name() string { return "possession" }

func (possessionStrategy) TryExtract(_ context.Context, text string) ([]string, error) {
	loc := possessionPattern.FindStringIndex(text)
	if loc == nil {
		return nil, nil
	}
	remainder := strings.TrimSpace(text[loc[1]:])
	remainder = strings.TrimRight(remainder, "?!.。？！")
	if remainder == "" {
		return nil, nil
	}
	return splitList(remainder), nil
}

// ---------------- 策略三：LLM 關鍵字擷取 ----------------

const (
	maxKeywords     = 3
	maxKeywordWords = 3
)

// 解析 "Keywords: a, b, c" 格式的回應
var keywordsPattern = regexp.MustCompile(`(?i)keywords?\s*[:：]?\s*(.*)`)

type llmKeywordStrategy struct {
	completer Completer
}

func (llmKeywordStrategy) Name() string { return "llm_keywords" }

func (s llmKeywordStrategy) TryExtract(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Extract at most 3 keywords from this input: \"%s\"\n"+
			"Return in this format: Keywords: keyword1, keyword2, keyword3", text)

	response, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		// 上游失敗降級為空結果，不往外拋
		return nil, err
	}

	match := keywordsPattern.FindStringSubmatch(strings.TrimSpace(response))
	if match == nil {
		common.LogWarn("LLM 回應中找不到關鍵字")
		return nil, nil
	}

	// 強化過濾：最多 3 個，每個最多 3 個英文單詞
	var keywords []string
	for _, kw := range splitList(match[1]) {
		if len(strings.Fields(kw)) <= maxKeywordWords {
			keywords = append(keywords, kw)
		}
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords, nil
}
