package systems

import (
	"log"
	"math"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/config"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/game"
	"github.com/decker502/surgery/pkg/utils"
)

// phaseUpdater 单个危机阶段的每帧更新函数
type phaseUpdater func(now float64, vitals *components.VitalStateComponent)

// CriticalEventSystem 病人心脏危机状态机
//
// 阶段序列（d = 危机周期）：
//
//	NORMAL → SPEEDING_UP(d/3) → ATTACKING(d/6) → SPEEDING_UP_TO_DIE(d/3) → ABOUT_TO_DIE(剩余) → DEAD
//	                 ╰──────────── 危机结束 ────────────╯→ FINISHING(恢复时间) → NORMAL
//
// 每帧比较当前时间与阶段截止时间推进状态，截止比较使用 >=（恰好到达即视为到达）。
// 零长度或负长度的阶段视为立即完成。
// 教学模式下进入 ATTACKING 时截止时间被设为 +Inf，危机只能由教学流程解除；
// 教学中途关闭时，被挂起的阶段从当前时间重新计时。
type CriticalEventSystem struct {
	entityManager *ecs.EntityManager
	patient       ecs.EntityID
	config        *config.VitalsConfig
	clock         game.Clock

	tutorial TutorialMode
	listener VitalsListener
	notifier CrisisNotifier

	// phases 阶段分发表
	phases map[components.CriticalState]phaseUpdater
}

// NewCriticalEventSystem 创建危机状态机
//
// 参数：
//   - em: 实体管理器
//   - patient: 拥有 VitalStateComponent 的病人实体
//   - cfg: 生命体征调校参数
//   - clock: 模拟时钟
//   - tutorial: 教学模式查询，可为 nil（视为非教学）
//   - listener: 监护仪输出端，可为 nil
//   - notifier: 危机通知，可为 nil
func NewCriticalEventSystem(
	em *ecs.EntityManager,
	patient ecs.EntityID,
	cfg *config.VitalsConfig,
	clock game.Clock,
	tutorial TutorialMode,
	listener VitalsListener,
	notifier CrisisNotifier,
) *CriticalEventSystem {
	s := &CriticalEventSystem{
		entityManager: em,
		patient:       patient,
		config:        cfg,
		clock:         clock,
		tutorial:      tutorial,
		listener:      listener,
		notifier:      notifier,
	}
	s.phases = map[components.CriticalState]phaseUpdater{
		components.CriticalStateSpeedingUp:      s.updateSpeedingUp,
		components.CriticalStateAttacking:       s.updateAttacking,
		components.CriticalStateSpeedingUpToDie: s.updateSpeedingUpToDie,
		components.CriticalStateAboutToDie:      s.updateAboutToDie,
		components.CriticalStateFinishing:       s.updateFinishing,
	}

	if listener == nil {
		log.Printf("[CriticalEventSystem] WARNING: No vitals listener, BPM changes will not be displayed")
	}

	return s
}

// Update 推进危机状态机
// 一帧内若阶段立即完成（零长度阶段），会继续执行下一阶段，直到状态稳定
//
// 参数：
//   - dt: 时间增量（秒），时间由注入的 Clock 提供，此处仅为系统接口一致
func (s *CriticalEventSystem) Update(dt float64) {
	vitals, ok := s.vitals()
	if !ok {
		return
	}

	now := s.clock.Now()
	for i := 0; i < len(s.phases)+1; i++ {
		update, exists := s.phases[vitals.CriticalState]
		if !exists {
			return
		}
		before := vitals.CriticalState
		update(now, vitals)
		if vitals.CriticalState == before {
			return
		}
	}
}

// OnCrisisStart 危机开始触发
// 危机进行中再次触发会覆盖当前危机（以最后一次为准）；病人死亡后忽略
func (s *CriticalEventSystem) OnCrisisStart(duration float64) {
	vitals, ok := s.vitals()
	if !ok {
		return
	}
	if vitals.CriticalState == components.CriticalStateDead {
		log.Printf("[CriticalEventSystem] WARNING: Crisis start ignored, patient is dead")
		return
	}
	if !(duration > 0) || math.IsInf(duration, 1) {
		log.Printf("[CriticalEventSystem] WARNING: Degenerate crisis duration %.2f, phases collapse to zero length", duration)
		duration = 0
	}

	now := s.clock.Now()
	vitals.CriticalState = components.CriticalStateSpeedingUp
	vitals.CycleDuration = duration
	vitals.CycleStartTime = now
	vitals.StateStartTime = now
	vitals.StateEndTime = now + duration/3.0
	vitals.DefibrillationsRemaining = s.config.DefibrillationsRequired
	vitals.AdvertedNotified = false

	log.Printf("[CriticalEventSystem] Crisis started at %.2f (duration %.2fs, %d defibrillations required)",
		now, duration, vitals.DefibrillationsRemaining)
}

// OnCrisisEnded 危机结束触发（除颤成功或外部流程结束危机）
// 只在危险分支内有效，NORMAL / FINISHING / DEAD 下忽略
// duration 参数仅为签名兼容
func (s *CriticalEventSystem) OnCrisisEnded(duration float64) {
	vitals, ok := s.vitals()
	if !ok {
		return
	}
	if !vitals.CriticalState.InCrisis() {
		log.Printf("[CriticalEventSystem] Crisis end ignored in state %s", vitals.CriticalState)
		return
	}

	now := s.clock.Now()
	vitals.CriticalState = components.CriticalStateFinishing
	vitals.StateStartTime = now
	vitals.StateEndTime = now + s.config.RecoveryTime
	vitals.RevertBPM = vitals.CurrentBPM
	vitals.DefibrillationsRemaining = 0

	log.Printf("[CriticalEventSystem] Crisis ended at %.2f, recovering from %.1f BPM", now, vitals.RevertBPM)
}

// OnPatientDeath 病人死亡触发（终态）
func (s *CriticalEventSystem) OnPatientDeath() {
	vitals, ok := s.vitals()
	if !ok {
		return
	}
	if vitals.CriticalState == components.CriticalStateDead {
		return
	}
	s.enterDead(s.clock.Now(), vitals)
}

// GetCriticalState 当前危机阶段
func (s *CriticalEventSystem) GetCriticalState() components.CriticalState {
	vitals, ok := s.vitals()
	if !ok {
		return components.CriticalStateNormal
	}
	return vitals.CriticalState
}

// GetBPM 当前心率
func (s *CriticalEventSystem) GetBPM() float64 {
	vitals, ok := s.vitals()
	if !ok {
		return 0
	}
	return vitals.CurrentBPM
}

// GetVitalState 返回生命体征组件的副本
func (s *CriticalEventSystem) GetVitalState() (components.VitalStateComponent, bool) {
	vitals, ok := s.vitals()
	if !ok {
		return components.VitalStateComponent{}, false
	}
	return *vitals, true
}

// phaseProgress 阶段进度 t = (now - start) / (end - start)
// 零长度或负长度阶段返回 1（立即完成）
func phaseProgress(now, start, end float64) float64 {
	if math.IsInf(end, 1) {
		return 0
	}
	span := end - start
	if span <= 0 || math.IsNaN(span) {
		return 1
	}
	return (now - start) / span
}

// transitionAnchor 下一阶段的起点取上一阶段的名义截止时间
// 帧步长较大时阶段链不会被拉长，危机总时长保持为 d
func transitionAnchor(now, end float64) float64 {
	if math.IsInf(end, 1) || math.IsNaN(end) || end > now {
		return now
	}
	return end
}

func (s *CriticalEventSystem) updateSpeedingUp(now float64, vitals *components.VitalStateComponent) {
	t := phaseProgress(now, vitals.StateStartTime, vitals.StateEndTime)
	if t >= 1.0 {
		start := transitionAnchor(now, vitals.StateEndTime)
		setBPM(vitals, s.config.CriticalBPM, s.listener)
		vitals.CriticalState = components.CriticalStateAttacking
		vitals.StateStartTime = start
		vitals.StateEndTime = s.attackingDeadline(start, vitals.CycleDuration)
		log.Printf("[CriticalEventSystem] Heart state ATTACKING at %.2f", now)
		return
	}
	setBPM(vitals, utils.Lerp(s.config.NormalBPM, s.config.CriticalBPM, t), s.listener)
}

// attackingDeadline 教学模式下 ATTACKING 没有截止时间
func (s *CriticalEventSystem) attackingDeadline(now, cycleDuration float64) float64 {
	if s.tutorialActive() {
		return math.Inf(1)
	}
	return now + cycleDuration/6.0
}

func (s *CriticalEventSystem) updateAttacking(now float64, vitals *components.VitalStateComponent) {
	s.resumeAfterTutorial(now, vitals, vitals.CycleDuration/6.0)

	t := phaseProgress(now, vitals.StateStartTime, vitals.StateEndTime)
	if t < 1.0 {
		return
	}

	// 教学中途开启：到达截止时间后停在 ATTACKING
	if s.tutorialActive() {
		vitals.StateEndTime = math.Inf(1)
		log.Printf("[CriticalEventSystem] Tutorial active, holding ATTACKING at %.2f", now)
		return
	}

	vitals.CriticalState = components.CriticalStateSpeedingUpToDie
	vitals.StateStartTime = transitionAnchor(now, vitals.StateEndTime)
	vitals.StateEndTime = vitals.StateStartTime + vitals.CycleDuration/3.0

	remaining := vitals.CycleDuration - (now - vitals.CycleStartTime)
	if s.notifier != nil {
		s.notifier.InformPatientAboutToDie(remaining)
	}
	log.Printf("[CriticalEventSystem] Heart state SPEEDING_UP_TO_DIE at %.2f (%.2fs before death)", now, remaining)
}

// resumeAfterTutorial 教学结束后恢复被挂起（截止时间 +Inf）的阶段
// 挂起的时间不计入危机周期：周期起点顺延，阶段从当前时间重新计时
func (s *CriticalEventSystem) resumeAfterTutorial(now float64, vitals *components.VitalStateComponent, length float64) bool {
	if !math.IsInf(vitals.StateEndTime, 1) || s.tutorialActive() {
		return false
	}
	vitals.CycleStartTime += now - vitals.StateStartTime
	vitals.StateStartTime = now
	vitals.StateEndTime = now + length
	log.Printf("[CriticalEventSystem] Tutorial finished, %s resumed at %.2f", vitals.CriticalState, now)
	return true
}

func (s *CriticalEventSystem) updateSpeedingUpToDie(now float64, vitals *components.VitalStateComponent) {
	t := phaseProgress(now, vitals.StateStartTime, vitals.StateEndTime)
	if t >= 1.0 {
		setBPM(vitals, s.config.AboutToDieBPM, s.listener)
		vitals.CriticalState = components.CriticalStateAboutToDie
		vitals.StateStartTime = transitionAnchor(now, vitals.StateEndTime)
		// ABOUT_TO_DIE 持续到危机周期结束
		vitals.StateEndTime = vitals.CycleStartTime + vitals.CycleDuration
		log.Printf("[CriticalEventSystem] Heart state ABOUT_TO_DIE at %.2f", now)
		return
	}
	setBPM(vitals, utils.Lerp(s.config.CriticalBPM, s.config.AboutToDieBPM, t), s.listener)
}

// updateAboutToDie 教学模式下挂起死亡倒计时，教学结束后从当前时间重新计算剩余时间
func (s *CriticalEventSystem) updateAboutToDie(now float64, vitals *components.VitalStateComponent) {
	if s.tutorialActive() {
		if !math.IsInf(vitals.StateEndTime, 1) {
			vitals.StateEndTime = math.Inf(1)
			log.Printf("[CriticalEventSystem] Tutorial active, holding ABOUT_TO_DIE at %.2f", now)
		}
		return
	}

	length := vitals.CycleStartTime + vitals.CycleDuration - vitals.StateStartTime
	if s.resumeAfterTutorial(now, vitals, length) && s.notifier != nil {
		s.notifier.InformPatientAboutToDie(vitals.StateEndTime - now)
	}
	if now >= vitals.CycleStartTime+vitals.CycleDuration {
		s.enterDead(now, vitals)
	}
}

func (s *CriticalEventSystem) updateFinishing(now float64, vitals *components.VitalStateComponent) {
	t := phaseProgress(now, vitals.StateStartTime, vitals.StateEndTime)
	if t >= 1.0 {
		setBPM(vitals, s.config.NormalBPM, s.listener)
		vitals.CriticalState = components.CriticalStateNormal
		vitals.StateStartTime = now
		log.Printf("[CriticalEventSystem] Heart state NORMAL at %.2f", now)
		return
	}
	setBPM(vitals, utils.Lerp(vitals.RevertBPM, s.config.NormalBPM, t), s.listener)
}

// enterDead 进入死亡终态：心率归零、长鸣音
func (s *CriticalEventSystem) enterDead(now float64, vitals *components.VitalStateComponent) {
	setBPM(vitals, 0, s.listener)
	vitals.CriticalState = components.CriticalStateDead
	vitals.StateStartTime = now
	vitals.DefibrillationsRemaining = 0
	if s.listener != nil {
		s.listener.OnMonitorLongTone()
	}
	log.Printf("[CriticalEventSystem] Heart state DEAD at %.2f", now)
}

func (s *CriticalEventSystem) tutorialActive() bool {
	return s.tutorial != nil && s.tutorial.IsTutorialActive()
}

func (s *CriticalEventSystem) vitals() (*components.VitalStateComponent, bool) {
	vitals, ok := ecs.GetComponent[*components.VitalStateComponent](s.entityManager, s.patient)
	if !ok {
		log.Printf("[CriticalEventSystem] ERROR: %v (entity %d)", ErrPatientMissing, s.patient)
	}
	return vitals, ok
}
