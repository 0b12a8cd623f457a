package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimator_Empty(t *testing.T) {
	e := NewEstimator("ministral-3:8b")
	n, err := e.CountTokens("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEstimator_ASCII(t *testing.T) {
	e := NewEstimator("ministral-3:8b")
	// 40 个 ASCII 字符 ≈ 10 token
	n, err := e.CountTokens("the quick brown fox jumps over the dog!")
	require.NoError(t, err)
	assert.InDelta(t, 10, n, 3)
}

func TestEstimator_CJK(t *testing.T) {
	e := NewEstimator("ministral-3:8b")
	// 9 个汉字 ≈ 6 token
	n, err := e.CountTokens("营销活动绩效分析报告")
	require.NoError(t, err)
	assert.Greater(t, n, 4)
}

func TestEstimator_MinimumOne(t *testing.T) {
	e := NewEstimator("x")
	n, err := e.CountTokens("a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewTiktokenTokenizer_UnknownModel(t *testing.T) {
	_, err := NewTiktokenTokenizer("ministral-3:8b")
	assert.Error(t, err)
}

func TestNewTiktokenTokenizer_PrefixMatch(t *testing.T) {
	tk, err := NewTiktokenTokenizer("gpt-4o-2024-08-06")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-2024-08-06", tk.Model())
}

func TestForModel_Fallback(t *testing.T) {
	tk := ForModel("meta/llama-3.3-70b-instruct")
	_, ok := tk.(*Estimator)
	assert.True(t, ok)

	tk = ForModel("gpt-4")
	_, ok = tk.(*TiktokenTokenizer)
	assert.True(t, ok)
}
