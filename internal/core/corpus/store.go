package corpus

import (
	"fmt"
	"os"
	"strings"

	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 食譜文件庫介面。服務期間只讀，索引建置屬外部流程。
type Store interface {
	// GetAll 依語料庫原始順序回傳所有文件
	GetAll() []Document

	// GetByName 依菜名取得文件，找不到時回傳 TARGET_NOT_FOUND
	GetByName(name string) (Document, error)
}

// FileStore 以 JSON 檔案為來源的文件庫
type FileStore struct {
	docs  []Document
	index map[string]int
}

// NewFileStore 從 JSON 檔案載入語料庫
func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var docs []Document
	if err := common.ParseJSONBytes(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}

	store := NewMemoryStore(docs)

	common.LogInfo("語料庫已載入",
		zap.String("path", path),
		zap.Int("documents", len(docs)),
	)

	return store, nil
}

// NewMemoryStore 從既有文件切片建立文件庫（測試與嵌入式使用）
func NewMemoryStore(docs []Document) *FileStore {
	index := make(map[string]int, len(docs))
	for i, doc := range docs {
		// 同名文件以先載入者為準
		if _, exists := index[normalizeName(doc.Name)]; !exists {
			index[normalizeName(doc.Name)] = i
		}
	}
	return &FileStore{docs: docs, index: index}
}

// GetAll 依原始順序回傳所有文件
func (s *FileStore) GetAll() []Document {
	return s.docs
}

// GetByName 依菜名取得文件（大小寫不敏感）
func (s *FileStore) GetByName(name string) (Document, error) {
	if i, ok := s.index[normalizeName(name)]; ok {
		return s.docs[i], nil
	}
	return Document{}, common.ErrTargetNotFound
}

// normalizeName 菜名比對鍵：小寫、去頭尾空白
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
