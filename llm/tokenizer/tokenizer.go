// Package tokenizer 为成本核算提供 token 计数。
//
// OpenAI 系模型走 tiktoken 精确编码；其余模型（ministral、llama 等）使用
// 区分 CJK/ASCII 的字符估算器。后端响应缺失 usage 字段时，执行器用它
// 补齐 SpecialistResult 的 token 统计。
package tokenizer

// Tokenizer token 计数器
type Tokenizer interface {
	// CountTokens 返回文本的 token 数。
	CountTokens(text string) (int, error)
	// Model 返回目标模型名。
	Model() string
}

// ForModel 为给定模型选择计数器：已知 OpenAI 编码用 tiktoken，
// 否则回退到估算器。
func ForModel(model string) Tokenizer {
	if tk, err := NewTiktokenTokenizer(model); err == nil {
		return tk
	}
	return NewEstimator(model)
}
