package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenTokenizer 为 OpenAI 系模型封装 tiktoken。
type TiktokenTokenizer struct {
	model    string
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

// 模型名到 tiktoken 编码的映射。
var modelEncodings = map[string]string{
	"gpt-4o":        "o200k_base",
	"gpt-4o-mini":   "o200k_base",
	"gpt-4-turbo":   "cl100k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

// NewTiktokenTokenizer 为给定模型创建 tiktoken 计数器。
// 未知模型返回错误，调用方应回退到估算器。
func NewTiktokenTokenizer(model string) (*TiktokenTokenizer, error) {
	encoding, ok := modelEncodings[model]
	if !ok {
		// 前缀匹配（gpt-4o-2024-xx 等版本号后缀）
		for prefix, enc := range modelEncodings {
			if strings.HasPrefix(model, prefix) {
				encoding = enc
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("no tiktoken encoding for model %q", model)
	}
	return &TiktokenTokenizer{model: model, encoding: encoding}, nil
}

func (t *TiktokenTokenizer) Model() string { return t.model }

// CountTokens 懒加载编码表后精确计数。
func (t *TiktokenTokenizer) CountTokens(text string) (int, error) {
	t.once.Do(func() {
		t.enc, t.initErr = tiktoken.GetEncoding(t.encoding)
	})
	if t.initErr != nil {
		return 0, fmt.Errorf("init tiktoken encoding %q: %w", t.encoding, t.initErr)
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}
