package tokenizer

import "unicode/utf8"

// Estimator 基于字符数的 token 估算器。区分 CJK 与 ASCII 字符，
// 比朴素的 len/4 更接近实际值。
type Estimator struct {
	model string
}

// NewEstimator 创建通用估算器。
func NewEstimator(model string) *Estimator {
	return &Estimator{model: model}
}

func (e *Estimator) Model() string { return e.model }

// CountTokens CJK 约 1.5 字符/token，ASCII 约 4 字符/token。
func (e *Estimator) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	totalChars := utf8.RuneCountInString(text)
	cjkCount := 0
	for _, r := range text {
		if isCJK(r) {
			cjkCount++
		}
	}

	cjkTokens := float64(cjkCount) / 1.5
	asciiTokens := float64(totalChars-cjkCount) / 4.0
	estimated := int(cjkTokens + asciiTokens)
	if estimated == 0 {
		estimated = 1
	}
	return estimated, nil
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // Extension A
		(r >= 0x3040 && r <= 0x30FF) || // Hiragana + Katakana
		(r >= 0xAC00 && r <= 0xD7AF) // Hangul
}
