package game

import (
	"log"

	"github.com/decker502/surgery/pkg/types"
)

// TutorialState 教学流程状态
//
// 病人模拟查询教学是否激活，并在教学中心脏危机被化解时通知教学流程推进；
// 教学流程反过来通过回调驱动教学手术和“拿起工具”阶段。
// 每个事件只有一个订阅方（手术场景），传入 nil 即取消订阅。
type TutorialState struct {
	active         bool
	toolPickUpStep bool

	// onHeartAttackAdverted 教学中危机化解回调（推进到下一教学步骤）
	onHeartAttackAdverted func()
	advertedCount         int

	onSurgeryStart    func()
	onToolPickUpStart func()
	onToolPickUpEnd   func()
	onToolPickedUp    func(tool types.ToolType, playerNum int)
}

// NewTutorialState 创建教学状态
func NewTutorialState(active bool) *TutorialState {
	return &TutorialState{active: active}
}

// IsTutorialActive 教学是否激活
func (ts *TutorialState) IsTutorialActive() bool {
	return ts != nil && ts.active
}

// SetActive 开启或关闭教学
func (ts *TutorialState) SetActive(active bool) {
	if ts.active != active {
		log.Printf("[TutorialState] Tutorial active: %v", active)
	}
	ts.active = active
}

// SetOnHeartAttackAdverted 设置危机化解回调
func (ts *TutorialState) SetOnHeartAttackAdverted(callback func()) {
	ts.onHeartAttackAdverted = callback
}

// InformHeartAttackAdverted 教学中心脏危机已被化解
func (ts *TutorialState) InformHeartAttackAdverted() {
	ts.advertedCount++
	log.Printf("[TutorialState] Heart attack adverted during tutorial (#%d)", ts.advertedCount)
	if ts.onHeartAttackAdverted != nil {
		ts.onHeartAttackAdverted()
	}
}

// AdvertedCount 教学中危机被化解的次数
func (ts *TutorialState) AdvertedCount() int {
	return ts.advertedCount
}

// SetOnSurgeryStart 设置教学手术开始回调
func (ts *TutorialState) SetOnSurgeryStart(callback func()) {
	ts.onSurgeryStart = callback
}

// SetOnToolPickUpStart 设置“拿起工具”阶段开始回调
func (ts *TutorialState) SetOnToolPickUpStart(callback func()) {
	ts.onToolPickUpStart = callback
}

// SetOnToolPickUpEnd 设置“拿起工具”阶段结束回调
func (ts *TutorialState) SetOnToolPickUpEnd(callback func()) {
	ts.onToolPickUpEnd = callback
}

// SetOnToolPickedUp 设置教学中拿起工具回调
func (ts *TutorialState) SetOnToolPickedUp(callback func(tool types.ToolType, playerNum int)) {
	ts.onToolPickedUp = callback
}

// StartSurgery 教学手术开始
func (ts *TutorialState) StartSurgery() {
	if !ts.IsTutorialActive() {
		log.Printf("[TutorialState] WARNING: Tutorial surgery ignored, tutorial inactive")
		return
	}
	log.Printf("[TutorialState] Tutorial surgery started")
	if ts.onSurgeryStart != nil {
		ts.onSurgeryStart()
	}
}

// StartToolPickUp 进入“拿起工具”阶段
func (ts *TutorialState) StartToolPickUp() {
	if !ts.IsTutorialActive() || ts.toolPickUpStep {
		return
	}
	ts.toolPickUpStep = true
	log.Printf("[TutorialState] Tool pick-up step started")
	if ts.onToolPickUpStart != nil {
		ts.onToolPickUpStart()
	}
}

// EndToolPickUp 结束“拿起工具”阶段
func (ts *TutorialState) EndToolPickUp() {
	if !ts.toolPickUpStep {
		return
	}
	ts.toolPickUpStep = false
	log.Printf("[TutorialState] Tool pick-up step ended")
	if ts.onToolPickUpEnd != nil {
		ts.onToolPickUpEnd()
	}
}

// IsToolPickUpStep 是否处于“拿起工具”阶段
func (ts *TutorialState) IsToolPickUpStep() bool {
	return ts != nil && ts.toolPickUpStep
}

// InformToolPickedUp 教学中医生拿起了工具
func (ts *TutorialState) InformToolPickedUp(tool types.ToolType, playerNum int) {
	if !ts.IsTutorialActive() {
		return
	}
	if ts.onToolPickedUp != nil {
		ts.onToolPickedUp(tool, playerNum)
	}
}
