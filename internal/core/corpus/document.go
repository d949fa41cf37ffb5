package corpus

import "strings"

// 食譜內文的固定分節標記
const (
	ingredientsMarker = "Ingredients:"
	stepsMarker       = "Steps:"
)

// Document 一份食譜文件。菜名在語料庫內唯一，內文含 "Ingredients:" 與
// "Steps:" 兩個分節，索引完成後不再修改。
type Document struct {
	Name     string            `json:"recipe_name"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngredientSection 取出 "Ingredients:" 與 "Steps:" 之間的內文，
// 缺少任一標記時回傳空字串
func (d Document) IngredientSection() string {
	if !strings.Contains(d.Text, ingredientsMarker) || !strings.Contains(d.Text, stepsMarker) {
		return ""
	}
	after := strings.SplitN(d.Text, ingredientsMarker, 2)[1]
	return strings.SplitN(after, stepsMarker, 2)[0]
}

// IngredientLines 取出配料分節並逐行切開，去除空行
func (d Document) IngredientLines() []string {
	section := d.IngredientSection()
	if section == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
