package core

import (
	"time"

	"contextvault/pkg/types"
)

// ObjectType 定义了 ContextVault 中的内容对象类型
type ObjectType string

const (
	TypeFile      ObjectType = "file"      // 普通文件内容
	TypeDirectory ObjectType = "directory" // 目录占位对象
	TypeEmbedding ObjectType = "embedding" // 向量化后的上下文片段
)

// Encoding 标记 Content 字段的字节含义
type Encoding string

const (
	EncodingUTF8   Encoding = "utf8"
	EncodingBinary Encoding = "binary"
	EncodingBase64 Encoding = "base64"
)

// ContentObject 是内容寻址的最小单位 (blob)
// ID 由 Content 的原始字节唯一决定，对象一旦写入永不修改，
// 内容变化只会产生新的 ID
type ContentObject struct {
	ID        types.Hash `cbor:"id" json:"id"`
	Type      ObjectType `cbor:"t" json:"type"`
	Content   []byte     `cbor:"c" json:"content"`
	Encoding  Encoding   `cbor:"e" json:"encoding"`
	Size      int64      `cbor:"s" json:"size"`
	MimeType  string     `cbor:"mt,omitempty" json:"mime_type,omitempty"`
	Embedding []float64  `cbor:"emb,omitempty" json:"embedding,omitempty"`
	CreatedAt int64      `cbor:"ts" json:"created_at"`
}

// NewContentObject 从原始字节创建内容对象并计算其内容地址
func NewContentObject(objType ObjectType, content []byte, encoding Encoding, mimeType string) *ContentObject {
	return &ContentObject{
		ID:        HashBytes(content),
		Type:      objType,
		Content:   content,
		Encoding:  encoding,
		Size:      int64(len(content)),
		MimeType:  mimeType,
		CreatedAt: time.Now().Unix(),
	}
}
