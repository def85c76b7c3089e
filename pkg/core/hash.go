package core

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"contextvault/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// 持久化编码采用接近 DAG-CBOR 的规范化选项
// 注意：内容地址只由原始字节决定 (见 HashBytes / HashTreeEntries)，
// CBOR 仅用于对象在磁盘/远端的存储格式
var encOptions = cbor.EncOptions{
	// 强制 Map Key 排序 (Canonical)
	// 保证相同的对象生成唯一的序列化结果
	Sort: cbor.SortCanonical,

	// 浮点数不做缩短处理 (embedding 向量统一为 64 位)
	ShortestFloat: cbor.ShortestFloatNone,

	// 时间格式化为 Unix 整数
	// 禁止自动生成 Tag 0/1 (RFC 3339 字符串)
	Time:    cbor.TimeUnix,
	TimeTag: cbor.EncTagNone,

	// 禁止不定长编码 (Indefinite Length)
	IndefLength: cbor.IndefLengthForbidden,

	// 大整数用最短编码
	BigIntConvert: cbor.BigIntConvertShortest,
}

// 全局复用的编码模式
var em, _ = encOptions.EncMode()

// 解码选项 (防 DoS：限制容器大小和嵌套深度)
var decOptions = cbor.DecOptions{
	MaxArrayElements: 1 << 20, // embedding 向量可能很长
	MaxMapPairs:      10000,
	MaxNestedLevels:  100,

	// 禁止不定长编码
	IndefLength: cbor.IndefLengthForbidden,

	// 强制检查 Map Key 重复
	DupMapKey: cbor.DupMapKeyEnforcedAPF,

	// 忽略时间 Tag，由 Struct 类型决定解析方式
	TimeTag: cbor.DecTagIgnored,
}

var dm, _ = decOptions.DecMode()

// EncodeObject 将对象序列化为规范化 CBOR (存储格式)
func EncodeObject(v any) ([]byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal object: %w", err)
	}
	return data, nil
}

// DecodeObject 通用的解码函数 (供外部使用)
func DecodeObject(data []byte, v any) error {
	return dm.Unmarshal(data, v)
}

// HashBytes 计算原始内容字节的内容地址
// 不变量：相同字节永远得到相同 Hash，跨进程稳定
func HashBytes(data []byte) types.Hash {
	sum := sha1.Sum(data)
	return types.Hash(hex.EncodeToString(sum[:]))
}

// HashTreeEntries 计算树的内容地址
// 规范化序列化：按 entries 提供的顺序拼接 "mode name object_id" 行
func HashTreeEntries(entries []TreeEntry) types.Hash {
	h := sha1.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s %s %s\n", e.Mode, e.Name, e.ObjectID)
	}
	return types.Hash(hex.EncodeToString(h.Sum(nil)))
}
