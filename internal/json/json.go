// Package json 统一项目内的 JSON 编解码实现，底层使用 bytedance/sonic。
package json

import (
	gojson "encoding/json"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

var (
	json = sonic.ConfigStd

	Marshal       = json.Marshal
	Unmarshal     = json.Unmarshal
	MarshalIndent = json.MarshalIndent
	Valid         = json.Valid
	NewDecoder    = json.NewDecoder
	NewEncoder    = json.NewEncoder
)

type (
	Number     = gojson.Number
	RawMessage = gojson.RawMessage
	Node       = ast.Node
)

// Parse 将 src 解析为完整加载的语法树，对象节点保留原始键顺序。
func Parse(src []byte) (Node, error) {
	root, err := sonic.Get(src)
	if err != nil {
		return Node{}, err
	}
	if err := root.LoadAll(); err != nil {
		return Node{}, err
	}
	return root, nil
}
