package scenes

import (
	"fmt"
	"image/color"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/config"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/entities"
	"github.com/decker502/surgery/pkg/game"
	"github.com/decker502/surgery/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// DefaultDoctorCount 默认医生（玩家）数量
const DefaultDoctorCount = 2

// OperatingSceneConfig 手术场景的依赖
// 除 Vitals 外都可以为空，空值使用默认实现
type OperatingSceneConfig struct {
	// Vitals 生命体征调校参数（必需）
	Vitals *config.VitalsConfig
	// Events 医生事件中心
	Events *game.DoctorEvents
	// Tutorial 教学状态
	Tutorial *game.TutorialState
	// Clock 模拟时钟
	Clock *game.SimClock
	// Random 随机游走的随机数来源
	Random systems.RandomSource
	// Listeners 额外的监护仪输出端（如 game.MonitorAudio）
	Listeners []systems.VitalsListener
	// Doctors 医生数量，编号从 0 开始
	Doctors int
}

// OperatingScene 手术室场景
//
// 负责组装病人实体和所有生命体征系统（依赖注入），订阅 DoctorEvents 并把事件路由到系统：
//   - 危机开始 / 结束 / 死亡 → CriticalEventSystem
//   - 危机化解 → 作为危机结束重新发布
//   - 手术子任务和工具拿起/放下 → SurgeryTaskSystem
//   - 教学手术、“拿起工具”阶段（TutorialState 回调） → SurgeryTaskSystem
//
// Close 取消订阅，场景被替换后不会再响应事件。
type OperatingScene struct {
	entityManager *ecs.EntityManager
	clock         *game.SimClock
	config        *config.VitalsConfig
	events        *game.DoctorEvents
	tutorial      *game.TutorialState
	subscription  *game.Subscription

	patient ecs.EntityID
	doctors map[int]ecs.EntityID
	props   *entities.PropFactory

	display   *monitorDisplay
	listeners systems.VitalsListeners

	criticalEventSystem    *systems.CriticalEventSystem
	heartRateSystem        *systems.HeartRateSystem
	patientOperationSystem *systems.PatientOperationSystem
	surgeryTaskSystem      *systems.SurgeryTaskSystem

	// controls 医生编号 → 正在操控的外科工具
	controls map[int]*systems.ToolControl

	gameOverPublished bool
	closed            bool
}

// NewOperatingScene 创建手术场景
func NewOperatingScene(cfg OperatingSceneConfig) (*OperatingScene, error) {
	if cfg.Vitals == nil {
		return nil, fmt.Errorf("vitals config cannot be nil")
	}
	if cfg.Events == nil {
		cfg.Events = game.NewDoctorEvents()
	}
	if cfg.Tutorial == nil {
		cfg.Tutorial = game.NewTutorialState(false)
	}
	if cfg.Clock == nil {
		cfg.Clock = game.NewSimClock(0)
	}
	if cfg.Random == nil {
		cfg.Random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Doctors <= 0 {
		cfg.Doctors = DefaultDoctorCount
	}

	s := &OperatingScene{
		entityManager: ecs.NewEntityManager(),
		clock:         cfg.Clock,
		config:        cfg.Vitals,
		events:        cfg.Events,
		tutorial:      cfg.Tutorial,
		doctors:       make(map[int]ecs.EntityID),
		display:       &monitorDisplay{clock: cfg.Clock},
		controls:      make(map[int]*systems.ToolControl),
	}
	s.listeners = append(systems.VitalsListeners{s.display}, cfg.Listeners...)

	patient, err := entities.NewPatientEntity(s.entityManager, s.config, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	s.patient = patient
	s.display.OnBPMChanged(s.config.NormalBPM)

	for number := 0; number < cfg.Doctors; number++ {
		id, err := entities.NewDoctorEntity(s.entityManager, number)
		if err != nil {
			return nil, fmt.Errorf("failed to create doctor %d: %w", number, err)
		}
		s.doctors[number] = id
	}

	s.props = entities.NewPropFactory(s.entityManager)
	s.props.OnSpawn = func(kind components.PropKind, id ecs.EntityID) {
		log.Printf("[OperatingScene] Prop %s ready (Entity ID: %d)", kind, id)
	}

	s.criticalEventSystem = systems.NewCriticalEventSystem(
		s.entityManager, patient, s.config, s.clock, s.tutorial, s.listeners, s.events)
	s.heartRateSystem = systems.NewHeartRateSystem(
		s.entityManager, patient, s.config, s.clock, cfg.Random, s.listeners)
	s.patientOperationSystem = systems.NewPatientOperationSystem(
		s.entityManager, patient, s.props, s.tutorial, s.events)
	s.surgeryTaskSystem = systems.NewSurgeryTaskSystem(s.entityManager, patient, s.props)
	s.surgeryTaskSystem.SetOnActionPromptChanged(func(visible bool) {
		log.Printf("[OperatingScene] Action prompt visible: %v", visible)
	})

	s.tutorial.SetOnHeartAttackAdverted(func() {
		log.Printf("[OperatingScene] Tutorial heart attack adverted")
	})
	s.tutorial.SetOnSurgeryStart(s.surgeryTaskSystem.OnTutorialSurgeryStart)
	s.tutorial.SetOnToolPickUpStart(s.surgeryTaskSystem.OnToolPickUpTutorialStart)
	s.tutorial.SetOnToolPickUpEnd(s.surgeryTaskSystem.OnToolPickUpTutorialEnd)
	s.tutorial.SetOnToolPickedUp(s.surgeryTaskSystem.OnTutorialToolPickedUp)

	s.subscription = s.events.Subscribe(s.handleEvent)

	log.Printf("[OperatingScene] Operating room ready: patient %d, %d doctors, tutorial=%v",
		patient, cfg.Doctors, s.tutorial.IsTutorialActive())
	return s, nil
}

// Update 推进一帧：时钟 → 危机状态机 → 心率振荡器 → 清理实体
func (s *OperatingScene) Update(deltaTime float64) {
	if s.closed {
		return
	}

	s.clock.Advance(deltaTime)
	s.criticalEventSystem.Update(deltaTime)
	s.heartRateSystem.Update(deltaTime)
	s.entityManager.RemoveMarkedEntities()

	// 超时死亡时对外发布游戏结束
	if s.criticalEventSystem.GetCriticalState() == components.CriticalStateDead && !s.gameOverPublished {
		s.gameOverPublished = true
		s.events.GameOver(0)
	}
}

// Draw 绘制监护仪读数
func (s *OperatingScene) Draw(screen *ebiten.Image) {
	if screen == nil {
		return
	}
	if s.display.flatline {
		screen.Fill(color.RGBA{R: 40, G: 0, B: 0, A: 255})
	} else {
		screen.Fill(color.RGBA{R: 0, G: 24, B: 16, A: 255})
	}
	ebitenutil.DebugPrint(screen, s.StatusText())
}

// Close 取消事件订阅和教学回调，归还所有工具操控权
func (s *OperatingScene) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.subscription.Unsubscribe()

	s.tutorial.SetOnHeartAttackAdverted(nil)
	s.tutorial.SetOnSurgeryStart(nil)
	s.tutorial.SetOnToolPickUpStart(nil)
	s.tutorial.SetOnToolPickUpEnd(nil)
	s.tutorial.SetOnToolPickedUp(nil)

	for number, control := range s.controls {
		control.Release()
		delete(s.controls, number)
	}
	for _, listener := range s.listeners {
		if stopper, ok := listener.(interface{ StopLongTone() }); ok {
			stopper.StopLongTone()
		}
	}
	log.Printf("[OperatingScene] Closed")
}

// CriticalState 当前危机阶段
func (s *OperatingScene) CriticalState() components.CriticalState {
	return s.criticalEventSystem.GetCriticalState()
}

// BPM 当前心率
func (s *OperatingScene) BPM() float64 {
	return s.criticalEventSystem.GetBPM()
}

// VitalState 病人生命体征副本
func (s *OperatingScene) VitalState() (components.VitalStateComponent, bool) {
	return s.criticalEventSystem.GetVitalState()
}

// Events 场景使用的事件中心
func (s *OperatingScene) Events() *game.DoctorEvents {
	return s.events
}

// Clock 场景使用的模拟时钟
func (s *OperatingScene) Clock() *game.SimClock {
	return s.clock
}

// Tutorial 教学状态
func (s *OperatingScene) Tutorial() *game.TutorialState {
	return s.tutorial
}

// Surgery 手术子任务系统
func (s *OperatingScene) Surgery() *systems.SurgeryTaskSystem {
	return s.surgeryTaskSystem
}

// BeatCount 病人心跳次数
func (s *OperatingScene) BeatCount() int {
	return s.heartRateSystem.BeatCount()
}
