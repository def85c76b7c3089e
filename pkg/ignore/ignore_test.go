package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Defaults(t *testing.T) {
	// 空目录 (没有 .cvignore)，只有默认规则
	tmpDir := t.TempDir()

	matcher, err := NewMatcher(tmpDir, DefaultPatterns)
	require.NoError(t, err)

	tests := []struct {
		path     string
		shouldIg bool
	}{
		// --- 元数据目录绝不能被索引 ---
		{".cv", true},
		{".cv/objects/aa", true},
		{".git", true},

		// --- 依赖与安全 ---
		{"node_modules", true},
		{"node_modules/package.js", true}, // 目录下的一切一起排除
		{".env", true},
		{"__pycache__/mod.cpython-311.pyc", true},

		// --- 通配符规则 ---
		{"cache/data.pyc", true}, // *.pyc
		{".DS_Store", true},

		// --- 正常文件 ---
		{"README.md", false},
		{"script.js", false},
		{"notes/design.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.shouldIg, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}

func TestMatcher_CustomPatterns(t *testing.T) {
	tmpDir := t.TempDir()

	// 自定义规则：通配符走正则，普通规则走子串包含
	matcher, err := NewMatcher(tmpDir, []string{"*.log", "secrets"})
	require.NoError(t, err)

	assert.True(t, matcher.Matches("app.log"))
	assert.True(t, matcher.Matches("logs/error.log"))
	assert.True(t, matcher.Matches("secrets/api_key.txt"))
	assert.True(t, matcher.Matches("config/secrets.yaml")) // 子串包含是刻意的粗粒度
	assert.False(t, matcher.Matches("main.go"))
}

func TestMatcher_WithUserFile(t *testing.T) {
	tmpDir := t.TempDir()

	// .cvignore 叠加完整的 gitignore 语义
	ignoreContent := `
# 注释行
*.tmp
scratch/
`
	err := os.WriteFile(filepath.Join(tmpDir, ".cvignore"), []byte(ignoreContent), 0644)
	require.NoError(t, err)

	matcher, err := NewMatcher(tmpDir, DefaultPatterns)
	require.NoError(t, err)

	// 默认规则依然生效
	assert.True(t, matcher.Matches(".cv"))
	assert.True(t, matcher.Matches(".env"))

	// 用户规则生效
	assert.True(t, matcher.Matches("a.tmp"))
	assert.True(t, matcher.Matches("scratch/notes.md"))

	// 正常文件
	assert.False(t, matcher.Matches("README.md"))
}

func TestMatcher_InvalidPattern(t *testing.T) {
	// QuoteMeta 之后任何 pattern 都是合法正则，构造不应失败
	_, err := NewMatcher("", []string{"a(b*"})
	assert.NoError(t, err)
}
