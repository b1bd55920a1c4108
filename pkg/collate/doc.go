// Package collate 实现 PouchDB collate 格式的保序编码。
//
// 编码结果按字节序比较即可得到值的排序：类型优先（Null < Bool < Number < String < List < Map），
// 同类型再比较内容。每个值以一个 ASCII 数字类型标签开头，以 0x00 结尾：
//
//	[67, true, "McDuck", "Scrooge"]
//	=> "5" "323256.70000000000000017764\x00" "21\x00" "4McDuck\x00" "4Scrooge\x00" "\x00"
//
// 包内没有全局可变状态，所有函数均可并发调用。
//
// 已知限制：次正规数（如 5e-324）能正确排序，但编码字节与 JavaScript 实现不一致。
// 负数尾数只保留 20 位小数，相邻的 17 位有效数字 float64 可能得到相同编码；
// 解码返回编码相同的最短十进制数，有效数字不超过 15 位的数总能精确往返。
package collate
