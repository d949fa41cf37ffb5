package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLastRecipe(t *testing.T) {
	h := NewHistory()
	h.Append(Turn{Role: RoleUser, Text: "what can I cook?"})
	h.Append(Turn{Role: RoleAssistant, Text: "Try Beef Stew.", RecipeName: "Beef Stew"})
	h.Append(Turn{Role: RoleUser, Text: "anything else?"})
	h.Append(Turn{Role: RoleAssistant, Text: "Try Pancakes.", RecipeName: "Pancakes"})
	h.Append(Turn{Role: RoleUser, Text: "double it"})

	// 回傳「最近提到」的食譜，而非最早的
	assert.Equal(t, "Pancakes", h.LastRecipe())
}

func TestHistoryLastRecipeEmpty(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, "", h.LastRecipe())

	h.Append(Turn{Role: RoleUser, Text: "hello"})
	assert.Equal(t, "", h.LastRecipe())
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager()

	id, history := m.GetOrCreate("")
	require.NotEmpty(t, id, "空 ID 應自動產生會話 ID")
	require.NotNil(t, history)

	history.Append(Turn{Role: RoleUser, Text: "hi"})

	// 同一 ID 取回同一份歷史
	sameID, same := m.GetOrCreate(id)
	assert.Equal(t, id, sameID)
	assert.Equal(t, 1, same.Len())

	// 不同 ID 互不干擾
	_, other := m.GetOrCreate("other-session")
	assert.Equal(t, 0, other.Len())
}

func TestManagerDrop(t *testing.T) {
	m := NewManager()
	id, history := m.GetOrCreate("s1")
	history.Append(Turn{Role: RoleUser, Text: "hi"})

	m.Drop(id)

	_, fresh := m.GetOrCreate(id)
	assert.Equal(t, 0, fresh.Len())
}
