// pkg/types/common.go
package types

// Hash 代表对象的内容地址 (SHA-1 Hex String, 40 字符)
// 这是一个“值对象”，应当是不可变的。
type Hash string

func (h Hash) String() string { return string(h) }

// 验证 Hash 合法性
func (h Hash) IsZero() bool  { return h == "" }
func (h Hash) IsValid() bool { return len(h) == 40 } // 简单的长度检查

// IDPrefix 代表用户输入的短 ID (可用于 commit 参数的前缀匹配)
type IDPrefix string

func (p IDPrefix) String() string { return string(p) }

// RepoPath 仓库根目录的物理路径
type RepoPath string

// ShortID 截取前 8 个字符用于展示 (uuid 和 hash 都适用)
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
