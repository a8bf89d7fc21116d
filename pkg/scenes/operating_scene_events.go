package scenes

import (
	"fmt"
	"log"

	"github.com/decker502/surgery/pkg/game"
	"github.com/decker502/surgery/pkg/systems"
	"github.com/decker502/surgery/pkg/types"
)

// handleEvent DoctorEvents 路由
func (s *OperatingScene) handleEvent(event game.DoctorEvent) {
	if s.closed {
		return
	}

	switch event.Type {
	case game.EventCriticalStart:
		s.display.clearDeadline()
		s.criticalEventSystem.OnCrisisStart(event.Duration)
	case game.EventCriticalEnded:
		s.display.clearDeadline()
		s.criticalEventSystem.OnCrisisEnded(event.Duration)
	case game.EventCriticalAdverted:
		s.forwardCrisis(func(l systems.CrisisListener) { l.OnCrisisAdverted() })
		// 化解即结束危机
		s.events.EndPatientCriticalEvent(0)
	case game.EventPatientAboutToDie:
		s.forwardCrisis(func(l systems.CrisisListener) { l.OnTimeRemainingBeforeDeath(event.Seconds) })
	case game.EventGameOver:
		s.gameOverPublished = true
		s.criticalEventSystem.OnPatientDeath()
	case game.EventNeedsStitches:
		s.surgeryTaskSystem.OnSuture(event.Duration)
	case game.EventNeedsCutOpen:
		s.surgeryTaskSystem.OnCutPatientOpen(event.Duration)
	case game.EventNeedsBloodSoak:
		s.surgeryTaskSystem.OnSoakBlood(event.Duration)
	case game.EventToolPickedUpForSurgery:
		s.surgeryTaskSystem.OnToolPickedUpForSurgery(event.Tool)
	case game.EventToolDroppedForSurgery:
		s.surgeryTaskSystem.OnToolDroppedForSurgery(event.Tool)
	default:
		log.Printf("[OperatingScene] WARNING: Unhandled event %s", event.Type)
	}
}

// forwardCrisis 把危机提示转发给实现了 CrisisListener 的输出端
func (s *OperatingScene) forwardCrisis(notify func(systems.CrisisListener)) {
	for _, listener := range s.listeners {
		if crisis, ok := listener.(systems.CrisisListener); ok {
			notify(crisis)
		}
	}
}

// StartCrisis 发布危机开始事件
// duration <= 0 时使用麻醉时钟时长
func (s *OperatingScene) StartCrisis(duration float64) {
	if duration <= 0 {
		duration = s.config.AnestheticClockLength
	}
	s.events.StartPatientCriticalEvent(duration)
}

// EndCrisis 发布危机结束事件
func (s *OperatingScene) EndCrisis() {
	s.events.EndPatientCriticalEvent(0)
}

// KillPatient 发布病人死亡事件
func (s *OperatingScene) KillPatient() {
	s.events.GameOver(0)
}

// SetTutorial 切换教学模式
func (s *OperatingScene) SetTutorial(active bool) {
	s.tutorial.SetActive(active)
}

// ApplyTool 医生对病人使用工具
// 外科工具成功时记录操控权，并发布拿起工具事件
func (s *OperatingScene) ApplyTool(tool types.ToolType, doctorNumber int) (*systems.ToolControl, error) {
	control, err := s.patientOperationSystem.ApplyTool(tool, doctorNumber)
	if err != nil {
		return nil, err
	}
	s.tutorial.InformToolPickedUp(tool, doctorNumber)
	if control == nil {
		return nil, nil
	}

	s.controls[doctorNumber] = control
	s.events.ToolPickedUpForSurgery(tool)
	return control, nil
}

// Defibrillate 医生使用除颤器
func (s *OperatingScene) Defibrillate(doctorNumber int) {
	if _, err := s.ApplyTool(types.ToolDefibrillator, doctorNumber); err != nil {
		log.Printf("[OperatingScene] ERROR: Defibrillation failed: %v", err)
	}
}

// ReleaseTool 医生放下正在操控的外科工具
func (s *OperatingScene) ReleaseTool(doctorNumber int) error {
	control, ok := s.heldControl(doctorNumber)
	if !ok {
		return fmt.Errorf("doctor %d holds no surgery tool", doctorNumber)
	}
	delete(s.controls, doctorNumber)

	control.Release()
	s.events.ToolDroppedForSurgery(control.Tool)
	return nil
}

// HeldTool 医生当前操控的外科工具
func (s *OperatingScene) HeldTool(doctorNumber int) types.ToolType {
	if control, ok := s.heldControl(doctorNumber); ok {
		return control.Tool
	}
	return types.ToolNone
}

// heldControl 医生仍持有的操控权
// 句柄已被直接 Release 的记录会被清理
func (s *OperatingScene) heldControl(doctorNumber int) (*systems.ToolControl, bool) {
	control, ok := s.controls[doctorNumber]
	if !ok {
		return nil, false
	}
	if control.Released() {
		delete(s.controls, doctorNumber)
		return nil, false
	}
	return control, true
}

// StartTutorialSurgery 教学流程：开始教学手术
func (s *OperatingScene) StartTutorialSurgery() {
	s.tutorial.StartSurgery()
}

// ToggleToolPickUpTutorial 教学流程：进入或结束“拿起工具”阶段
func (s *OperatingScene) ToggleToolPickUpTutorial() {
	if s.tutorial.IsToolPickUpStep() {
		s.tutorial.EndToolPickUp()
		return
	}
	s.tutorial.StartToolPickUp()
}

// DoctorInteracts 医生开始与病人交互
func (s *OperatingScene) DoctorInteracts(doctorNumber int) bool {
	return s.surgeryTaskSystem.DoctorInitiatesInteracting(doctorNumber)
}
