package systems

import (
	"fmt"
	"log"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/types"
)

// ToolControl 外科工具的操控权句柄
// 拿到句柄期间，发起操作的医生自身输入被禁用；Release 归还操控权
type ToolControl struct {
	entityManager *ecs.EntityManager

	// ToolEntity 生成的工具实体
	ToolEntity ecs.EntityID
	// DoctorEntity 持有操控权的医生实体
	DoctorEntity ecs.EntityID
	// Tool 工具类型
	Tool types.ToolType
	// Prop 生成的道具种类
	Prop components.PropKind
	// PlayerNum 操控该工具的玩家编号
	PlayerNum int

	released bool
}

// Release 归还操控权：恢复医生输入并移除工具实体
// 可重复调用
func (c *ToolControl) Release() {
	if c == nil || c.released {
		return
	}
	c.released = true

	if doctor, ok := ecs.GetComponent[*components.DoctorComponent](c.entityManager, c.DoctorEntity); ok {
		doctor.InputEnabled = true
		doctor.HeldTool = types.ToolNone
	}
	if tool, ok := ecs.GetComponent[*components.SurgeryToolComponent](c.entityManager, c.ToolEntity); ok {
		tool.Holder = 0
	}
	c.entityManager.DestroyEntity(c.ToolEntity)

	log.Printf("[PatientOperationSystem] Doctor %d released %s", c.PlayerNum, c.Tool)
}

// Released 操控权是否已归还
func (c *ToolControl) Released() bool {
	return c.released
}

// PatientOperationSystem 医生对病人使用工具
//
// 职责：
//   - 除颤器：危机窗口内递减除颤计数，归零时通知危机化解（每次危机恰好一次）
//   - 缝合针/手术刀/纱布：禁用医生输入，生成工具道具并转移操控权
type PatientOperationSystem struct {
	entityManager *ecs.EntityManager
	patient       ecs.EntityID

	spawner  PropSpawner
	tutorial TutorialMode
	notifier CrisisNotifier
}

// NewPatientOperationSystem 创建病人操作系统
//
// 参数：
//   - em: 实体管理器
//   - patient: 病人实体（需要 VitalStateComponent 和 SurgeryTaskComponent）
//   - spawner: 工具道具生成器，可为 nil（外科工具操作将返回 ErrNoPropSpawner）
//   - tutorial: 教学模式查询，可为 nil
//   - notifier: 危机化解通知，可为 nil
func NewPatientOperationSystem(
	em *ecs.EntityManager,
	patient ecs.EntityID,
	spawner PropSpawner,
	tutorial TutorialMode,
	notifier CrisisNotifier,
) *PatientOperationSystem {
	return &PatientOperationSystem{
		entityManager: em,
		patient:       patient,
		spawner:       spawner,
		tutorial:      tutorial,
		notifier:      notifier,
	}
}

// ApplyTool 医生对病人使用工具
//
// 参数：
//   - tool: 工具类型
//   - doctorNumber: 发起操作的医生编号
//
// 返回：
//   - *ToolControl: 外科工具的操控权句柄；除颤器返回 nil
//   - error: ErrUnmappedTool / ErrDoctorNotFound / ErrDoctorBusy / ErrNoPropSpawner
func (s *PatientOperationSystem) ApplyTool(tool types.ToolType, doctorNumber int) (*ToolControl, error) {
	switch {
	case tool == types.ToolDefibrillator:
		s.defibrillate()
		return nil, nil
	case tool.IsSurgical():
		return s.transferControl(tool, doctorNumber)
	default:
		log.Printf("[PatientOperationSystem] WARNING: %s has no patient operation", tool)
		return nil, fmt.Errorf("%w: %s", ErrUnmappedTool, tool)
	}
}

// DefibrillationsRemaining 当前还需要的除颤次数
func (s *PatientOperationSystem) DefibrillationsRemaining() int {
	vitals, ok := ecs.GetComponent[*components.VitalStateComponent](s.entityManager, s.patient)
	if !ok {
		return 0
	}
	return vitals.DefibrillationsRemaining
}

// defibrillate 除颤
// 计数只在危机窗口（ATTACKING 到 ABOUT_TO_DIE）内递减
func (s *PatientOperationSystem) defibrillate() {
	vitals, ok := ecs.GetComponent[*components.VitalStateComponent](s.entityManager, s.patient)
	if !ok {
		log.Printf("[PatientOperationSystem] ERROR: %v (entity %d)", ErrPatientMissing, s.patient)
		return
	}

	if vitals.DefibrillationsRemaining <= 0 {
		log.Printf("[PatientOperationSystem] Defibrillation with nothing remaining (state %s)", vitals.CriticalState)
		return
	}
	if !inDefibrillationWindow(vitals.CriticalState) {
		log.Printf("[PatientOperationSystem] Defibrillation ignored outside crisis window (state %s)", vitals.CriticalState)
		return
	}

	vitals.DefibrillationsRemaining--
	log.Printf("[PatientOperationSystem] Defibrillations remaining: %d", vitals.DefibrillationsRemaining)

	if vitals.DefibrillationsRemaining > 0 || vitals.AdvertedNotified {
		return
	}

	vitals.AdvertedNotified = true
	log.Printf("[PatientOperationSystem] Crisis adverted")
	if s.notifier != nil {
		s.notifier.PatientCriticalAdverted()
	}
	if s.tutorial != nil && s.tutorial.IsTutorialActive() {
		s.tutorial.InformHeartAttackAdverted()
	}
}

// inDefibrillationWindow 除颤有效的阶段
func inDefibrillationWindow(state components.CriticalState) bool {
	switch state {
	case components.CriticalStateAttacking,
		components.CriticalStateSpeedingUpToDie,
		components.CriticalStateAboutToDie:
		return true
	}
	return false
}

// transferControl 生成外科工具并把操控权交给医生
func (s *PatientOperationSystem) transferControl(tool types.ToolType, doctorNumber int) (*ToolControl, error) {
	doctorEntity, doctor, ok := s.findDoctor(doctorNumber)
	if !ok {
		log.Printf("[PatientOperationSystem] ERROR: Couldn't find doctor %d", doctorNumber)
		return nil, fmt.Errorf("%w: %d", ErrDoctorNotFound, doctorNumber)
	}
	if !doctor.InputEnabled {
		log.Printf("[PatientOperationSystem] WARNING: Doctor %d already controls %s", doctorNumber, doctor.HeldTool)
		return nil, fmt.Errorf("%w: doctor %d holds %s", ErrDoctorBusy, doctorNumber, doctor.HeldTool)
	}
	if s.spawner == nil {
		log.Printf("[PatientOperationSystem] ERROR: No prop spawner, cannot hand %s to doctor %d", tool, doctorNumber)
		return nil, ErrNoPropSpawner
	}

	prop := s.toolProp(tool)
	toolEntity, err := s.spawner.SpawnTool(prop, tool, doctorNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn %s for doctor %d: %w", prop, doctorNumber, err)
	}
	if tool == types.ToolScalpel {
		if task, ok := ecs.GetComponent[*components.SurgeryTaskComponent](s.entityManager, s.patient); ok {
			task.ScalpelPlaced = true
		}
	}

	doctor.InputEnabled = false
	doctor.HeldTool = tool
	if toolComp, ok := ecs.GetComponent[*components.SurgeryToolComponent](s.entityManager, toolEntity); ok {
		toolComp.Holder = doctorEntity
	}

	log.Printf("[PatientOperationSystem] Receiving %s operation from doctor %d (prop %s)", tool, doctorNumber, prop)

	return &ToolControl{
		entityManager: s.entityManager,
		ToolEntity:    toolEntity,
		DoctorEntity:  doctorEntity,
		Tool:          tool,
		Prop:          prop,
		PlayerNum:     doctorNumber,
	}, nil
}

// toolProp 选择要生成的道具
// 第一把手术刀用普通道具；之后在教学模式下使用第二把教学手术刀
func (s *PatientOperationSystem) toolProp(tool types.ToolType) components.PropKind {
	switch tool {
	case types.ToolSuture:
		return components.PropSutureTool
	case types.ToolGauze:
		return components.PropGauzeTool
	}

	task, ok := ecs.GetComponent[*components.SurgeryTaskComponent](s.entityManager, s.patient)
	if ok && task.ScalpelPlaced && s.tutorial != nil && s.tutorial.IsTutorialActive() {
		return components.PropDuplicateScalpelTool
	}
	return components.PropScalpelTool
}

func (s *PatientOperationSystem) findDoctor(number int) (ecs.EntityID, *components.DoctorComponent, bool) {
	for _, id := range ecs.GetEntitiesWith1[*components.DoctorComponent](s.entityManager) {
		doctor, ok := ecs.GetComponent[*components.DoctorComponent](s.entityManager, id)
		if ok && doctor.Number == number {
			return id, doctor, true
		}
	}
	return 0, nil, false
}
