package systems

import (
	"log"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/types"
)

// SurgeryTaskSystem 手术子任务（缝合、切开、吸血）
//
// 子任务请求会在病人身上生成对应的热点/轨迹，并决定病人当前需要的工具。
// 同时维护“操作提示按钮”的可见性：
//   - 医生拿起外科工具时显示，放下时隐藏
//   - 教学“拿起工具”阶段中，拿起任意工具都会显示
//   - 医生开始与病人交互时隐藏
type SurgeryTaskSystem struct {
	entityManager *ecs.EntityManager
	patient       ecs.EntityID
	spawner       PropSpawner

	// onActionPromptChanged 提示按钮可见性变化回调（由界面层实现弹跳动画等）
	onActionPromptChanged func(visible bool)
}

// NewSurgeryTaskSystem 创建手术子任务系统
func NewSurgeryTaskSystem(em *ecs.EntityManager, patient ecs.EntityID, spawner PropSpawner) *SurgeryTaskSystem {
	if spawner == nil {
		log.Printf("[SurgeryTaskSystem] WARNING: No prop spawner, hotspots will not be created")
	}
	return &SurgeryTaskSystem{
		entityManager: em,
		patient:       patient,
		spawner:       spawner,
	}
}

// SetOnActionPromptChanged 设置提示按钮可见性回调
func (s *SurgeryTaskSystem) SetOnActionPromptChanged(callback func(visible bool)) {
	s.onActionPromptChanged = callback
}

// OnSuture 病人需要缝合
func (s *SurgeryTaskSystem) OnSuture(duration float64) {
	s.requestTask(components.PropSutureHotspots, types.ToolSuture, duration)
}

// OnCutPatientOpen 病人需要切开
func (s *SurgeryTaskSystem) OnCutPatientOpen(duration float64) {
	s.requestTask(components.PropScalpelTrack, types.ToolScalpel, duration)
}

// OnSoakBlood 病人需要吸血
func (s *SurgeryTaskSystem) OnSoakBlood(duration float64) {
	s.requestTask(components.PropGauzeHotspots, types.ToolGauze, duration)
}

// OnTutorialSurgeryStart 教学手术开始
// 依次生成缝合热点、第二条切口、切口和吸血热点，最终需要的工具为纱布
func (s *SurgeryTaskSystem) OnTutorialSurgeryStart() {
	s.requestTask(components.PropSutureHotspots, types.ToolSuture, 0)
	s.requestTask(components.PropDuplicateScalpelTrack, types.ToolScalpel, 0)
	s.requestTask(components.PropScalpelTrack, types.ToolScalpel, 0)
	s.requestTask(components.PropGauzeHotspots, types.ToolGauze, 0)
}

// RequiredToolType 病人当前需要的工具
func (s *SurgeryTaskSystem) RequiredToolType() types.ToolType {
	task, ok := s.task()
	if !ok {
		return types.ToolNone
	}
	return task.RequiredTool
}

// OnToolPickedUpForSurgery 医生拿起外科工具
func (s *SurgeryTaskSystem) OnToolPickedUpForSurgery(tool types.ToolType) {
	s.setActionPrompt(true)
}

// OnToolDroppedForSurgery 医生放下外科工具
func (s *SurgeryTaskSystem) OnToolDroppedForSurgery(tool types.ToolType) {
	s.setActionPrompt(false)
}

// OnToolPickUpTutorialStart 教学“拿起工具”阶段开始
func (s *SurgeryTaskSystem) OnToolPickUpTutorialStart() {
	if task, ok := s.task(); ok {
		task.TutorialPickup = true
	}
}

// OnToolPickUpTutorialEnd 教学“拿起工具”阶段结束
func (s *SurgeryTaskSystem) OnToolPickUpTutorialEnd() {
	if task, ok := s.task(); ok {
		task.TutorialPickup = false
	}
	s.setActionPrompt(false)
}

// OnTutorialToolPickedUp 教学中拿起任意工具
func (s *SurgeryTaskSystem) OnTutorialToolPickedUp(tool types.ToolType, playerNum int) {
	task, ok := s.task()
	if ok && task.TutorialPickup {
		s.setActionPrompt(true)
	}
}

// DoctorInitiatesInteracting 医生开始与病人交互
// 隐藏提示按钮，总是接受交互
func (s *SurgeryTaskSystem) DoctorInitiatesInteracting(doctorNumber int) bool {
	log.Printf("[SurgeryTaskSystem] Doctor %d initiated patient interaction", doctorNumber)
	s.setActionPrompt(false)
	return true
}

// IsActionPromptVisible 提示按钮是否可见
func (s *SurgeryTaskSystem) IsActionPromptVisible() bool {
	task, ok := s.task()
	return ok && task.ActionPromptVisible
}

func (s *SurgeryTaskSystem) requestTask(hotspot components.PropKind, tool types.ToolType, duration float64) {
	task, ok := s.task()
	if !ok {
		log.Printf("[SurgeryTaskSystem] ERROR: Patient %d has no surgery task component", s.patient)
		return
	}

	if s.spawner != nil {
		if _, err := s.spawner.SpawnHotspot(hotspot); err != nil {
			log.Printf("[SurgeryTaskSystem] WARNING: Failed to spawn %s: %v", hotspot, err)
		}
	}

	task.RequiredTool = tool
	task.Hotspot = hotspot
	task.Duration = duration
	log.Printf("[SurgeryTaskSystem] Patient now requires %s (%s)", tool, hotspot)
}

func (s *SurgeryTaskSystem) setActionPrompt(visible bool) {
	task, ok := s.task()
	if !ok || task.ActionPromptVisible == visible {
		return
	}
	task.ActionPromptVisible = visible
	if s.onActionPromptChanged != nil {
		s.onActionPromptChanged(visible)
	}
}

func (s *SurgeryTaskSystem) task() (*components.SurgeryTaskComponent, bool) {
	return ecs.GetComponent[*components.SurgeryTaskComponent](s.entityManager, s.patient)
}
