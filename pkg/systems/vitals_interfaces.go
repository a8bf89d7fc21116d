package systems

import (
	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/types"
)

// VitalsListener 生命体征输出端（监护仪显示、音效）
// 所有回调都在模拟帧内同步调用，实现方不得阻塞
type VitalsListener interface {
	// OnBPMChanged 心率数值变化
	OnBPMChanged(bpm float64)
	// OnMonitorBeep 危机期间每次心跳的监护仪提示音
	OnMonitorBeep()
	// OnMonitorLongTone 病人死亡时的长鸣音
	OnMonitorLongTone()
}

// VitalsListeners 将同一通知分发给多个输出端
type VitalsListeners []VitalsListener

// OnBPMChanged 分发心率变化
func (ls VitalsListeners) OnBPMChanged(bpm float64) {
	for _, l := range ls {
		if l != nil {
			l.OnBPMChanged(bpm)
		}
	}
}

// OnMonitorBeep 分发心跳提示音
func (ls VitalsListeners) OnMonitorBeep() {
	for _, l := range ls {
		if l != nil {
			l.OnMonitorBeep()
		}
	}
}

// OnMonitorLongTone 分发长鸣音
func (ls VitalsListeners) OnMonitorLongTone() {
	for _, l := range ls {
		if l != nil {
			l.OnMonitorLongTone()
		}
	}
}

// CrisisListener 可选的危机提示输出端
// VitalsListener 同时实现该接口时，场景会把倒计时和化解事件转发给它
type CrisisListener interface {
	// OnTimeRemainingBeforeDeath 进入冲向死亡阶段时距离死亡的秒数
	OnTimeRemainingBeforeDeath(seconds float64)
	// OnCrisisAdverted 危机被除颤化解
	OnCrisisAdverted()
}

// CrisisNotifier 危机相关的对外通知（由 game.DoctorEvents 实现）
type CrisisNotifier interface {
	// PatientCriticalAdverted 除颤次数归零，危机被化解
	PatientCriticalAdverted()
	// InformPatientAboutToDie 距离死亡还剩 seconds 秒
	InformPatientAboutToDie(seconds float64)
}

// TutorialMode 教学模式查询（由 game.TutorialState 实现）
type TutorialMode interface {
	IsTutorialActive() bool
	InformHeartAttackAdverted()
}

// RandomSource [0,1) 均匀随机数来源，*rand.Rand 满足此接口
type RandomSource interface {
	Float64() float64
}

// PropSpawner 手术道具生成器（由 entities.PropFactory 实现）
type PropSpawner interface {
	// SpawnTool 生成外科工具并交给 playerNum 操控
	SpawnTool(kind components.PropKind, tool types.ToolType, playerNum int) (ecs.EntityID, error)
	// SpawnHotspot 在病人身上生成手术热点/轨迹
	SpawnHotspot(kind components.PropKind) (ecs.EntityID, error)
}

// setBPM 写入心率并在数值变化时通知输出端
// 心率始终 >= 0
func setBPM(vitals *components.VitalStateComponent, bpm float64, listener VitalsListener) {
	if bpm < 0 {
		bpm = 0
	}
	if vitals.CurrentBPM == bpm {
		return
	}
	vitals.CurrentBPM = bpm
	if listener != nil {
		listener.OnBPMChanged(bpm)
	}
}
