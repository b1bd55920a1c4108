package log

import (
	"encoding/hex"

	"go.uber.org/zap"
)

const (
	FieldNameModule    = "module"
	FieldNameComponent = "component"
	FieldNameCommand   = "command"
	FieldNameKey       = "key"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldCommand 返回一个包含 CLI 子命令名的 zap 字段。
func FieldCommand(command string) zap.Field {
	return zap.String(FieldNameCommand, command)
}

// FieldKey 以十六进制形式记录一个编码后的排序键，键中含有 NUL 字节，不能直接输出。
func FieldKey(key []byte) zap.Field {
	return zap.String(FieldNameKey, hex.EncodeToString(key))
}
