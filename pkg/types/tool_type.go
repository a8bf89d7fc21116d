// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

// ToolType 定义医生可以对病人使用的工具类型
type ToolType int

const (
	// ToolNone 空手（未持有工具）
	ToolNone ToolType = iota
	// ToolSuture 缝合针（缝合伤口）
	ToolSuture
	// ToolScalpel 手术刀（切开病人）
	ToolScalpel
	// ToolGauze 纱布（吸血）
	ToolGauze
	// ToolDefibrillator 除颤器（心脏危机时使用）
	ToolDefibrillator
)

// String 返回工具类型的字符串表示
func (t ToolType) String() string {
	switch t {
	case ToolNone:
		return "None"
	case ToolSuture:
		return "Suture"
	case ToolScalpel:
		return "Scalpel"
	case ToolGauze:
		return "Gauze"
	case ToolDefibrillator:
		return "Defibrillator"
	default:
		return "Unknown"
	}
}

// IsSurgical 是否为需要生成手术道具并转移操控权的外科工具
func (t ToolType) IsSurgical() bool {
	return t == ToolSuture || t == ToolScalpel || t == ToolGauze
}
