package components

import (
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/types"
)

// DoctorComponent 医生组件
// 外科工具被拿起时，医生自身的输入控制被禁用，操控权转移给工具
type DoctorComponent struct {
	// Number 医生编号（0-based，对应玩家编号）
	Number int
	// InputEnabled 医生自身的输入控制是否启用
	InputEnabled bool
	// HeldTool 当前转移控制权的外科工具类型，ToolNone 表示空闲
	HeldTool types.ToolType
}

// PropKind 手术道具预制体种类
type PropKind int

const (
	// PropSutureTool 缝合针工具
	PropSutureTool PropKind = iota
	// PropScalpelTool 手术刀工具
	PropScalpelTool
	// PropDuplicateScalpelTool 教学用的第二把手术刀
	PropDuplicateScalpelTool
	// PropGauzeTool 纱布工具
	PropGauzeTool
	// PropSutureHotspots 缝合热点
	PropSutureHotspots
	// PropScalpelTrack 切口轨迹
	PropScalpelTrack
	// PropDuplicateScalpelTrack 教学用的第二条切口轨迹
	PropDuplicateScalpelTrack
	// PropGauzeHotspots 吸血热点
	PropGauzeHotspots
)

// String 返回道具种类名称（用于日志）
func (k PropKind) String() string {
	switch k {
	case PropSutureTool:
		return "SutureTool"
	case PropScalpelTool:
		return "ScalpelTool"
	case PropDuplicateScalpelTool:
		return "DuplicateScalpelTool"
	case PropGauzeTool:
		return "GauzeTool"
	case PropSutureHotspots:
		return "SutureHotspots"
	case PropScalpelTrack:
		return "ScalpelTrack"
	case PropDuplicateScalpelTrack:
		return "DuplicateScalpelTrack"
	case PropGauzeHotspots:
		return "GauzeHotspots"
	default:
		return "Unknown"
	}
}

// SurgeryToolComponent 已生成的外科工具实体
// 同一工具实例同一时间只允许一个持有者
type SurgeryToolComponent struct {
	Type      types.ToolType
	Prop      PropKind
	PlayerNum int
	// Holder 持有该工具的医生实体，0 表示已释放
	Holder ecs.EntityID
}

// SurgeryTaskComponent 病人身上的手术子任务状态
type SurgeryTaskComponent struct {
	// RequiredTool 当前交互需要的工具
	RequiredTool types.ToolType
	// Hotspot 最近一次生成的热点/轨迹
	Hotspot PropKind
	// Duration 触发方提供的子任务时长（秒），目前仅记录
	Duration float64

	// ScalpelPlaced 第一把手术刀是否已经放出
	ScalpelPlaced bool

	// ActionPromptVisible 操作提示按钮是否可见
	ActionPromptVisible bool
	// TutorialPickup 是否处于教学“拿起工具”阶段
	TutorialPickup bool
}

// HotspotComponent 病人身上的手术热点/切口轨迹
type HotspotComponent struct {
	Kind PropKind
	// Tool 完成该热点需要的工具
	Tool types.ToolType
}
