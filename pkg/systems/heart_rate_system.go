package systems

import (
	"log"
	"math"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/config"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/game"
)

// 随机游走的三等分阈值
const (
	modulationLowerThird = 1.0 / 3.0
	modulationUpperThird = 2.0 / 3.0
)

// HeartRateSystem 心率振荡器
//
// 独立于危机状态机的心跳计时器，周期 = 60 / 当前心率，每次心跳后重新计算，
// 心动过速时心跳间隔随之缩短。每次心跳：
//  1. 重新锚定下一次心跳时间
//  2. 危机阶段内触发监护仪提示音
//  3. 在 NORMAL / ATTACKING / ABOUT_TO_DIE 中围绕参考心率做 ±1 的有界随机游走
//
// 插值阶段（SPEEDING_UP / SPEEDING_UP_TO_DIE / FINISHING）的心率由 CriticalEventSystem
// 每帧直接写入，这里不做随机游走。
type HeartRateSystem struct {
	entityManager *ecs.EntityManager
	patient       ecs.EntityID
	config        *config.VitalsConfig
	clock         game.Clock
	random        RandomSource
	listener      VitalsListener

	beatCount int
}

// NewHeartRateSystem 创建心率振荡器
//
// 参数：
//   - em: 实体管理器
//   - patient: 病人实体
//   - cfg: 生命体征调校参数
//   - clock: 模拟时钟
//   - random: 随机数来源
//   - listener: 监护仪输出端，可为 nil
func NewHeartRateSystem(
	em *ecs.EntityManager,
	patient ecs.EntityID,
	cfg *config.VitalsConfig,
	clock game.Clock,
	random RandomSource,
	listener VitalsListener,
) *HeartRateSystem {
	return &HeartRateSystem{
		entityManager: em,
		patient:       patient,
		config:        cfg,
		clock:         clock,
		random:        random,
		listener:      listener,
	}
}

// Update 检查是否到达心跳时间
func (s *HeartRateSystem) Update(dt float64) {
	vitals, ok := ecs.GetComponent[*components.VitalStateComponent](s.entityManager, s.patient)
	if !ok {
		return
	}

	now := s.clock.Now()
	if now <= vitals.NextBeatTime {
		return
	}
	s.beat(now, vitals)
}

// BeatCount 已发生的心跳次数
func (s *HeartRateSystem) BeatCount() int {
	return s.beatCount
}

func (s *HeartRateSystem) beat(now float64, vitals *components.VitalStateComponent) {
	s.beatCount++
	vitals.LastBeatTime = now
	vitals.NextBeatTime = now + BeatInterval(vitals.CurrentBPM)

	state := vitals.CriticalState
	if state.ShouldSoundMonitorBeep() && s.listener != nil {
		s.listener.OnMonitorBeep()
	}

	if !modulatesRandomly(state) {
		return
	}
	s.modulate(vitals, s.ReferenceHeartRate(state))
}

// modulate 有界随机游走
// 下三分之一减 1（不低于 ref - range），上三分之一加 1（不高于 ref + range），中间不变
func (s *HeartRateSystem) modulate(vitals *components.VitalStateComponent, reference float64) {
	if s.random == nil {
		return
	}

	floor := reference - s.config.ModulationRange
	ceiling := reference + s.config.ModulationRange
	value := s.random.Float64()

	switch {
	case value < modulationLowerThird:
		if vitals.CurrentBPM > floor {
			setBPM(vitals, math.Max(vitals.CurrentBPM-1, floor), s.listener)
		}
	case value > modulationUpperThird:
		if vitals.CurrentBPM < ceiling {
			setBPM(vitals, math.Min(vitals.CurrentBPM+1, ceiling), s.listener)
		}
	}
}

// ReferenceHeartRate 各阶段随机游走的参考心率
// SPEEDING_UP_TO_DIE / ABOUT_TO_DIE / DEAD 没有定义专门的参考值，沿用正常心率
func (s *HeartRateSystem) ReferenceHeartRate(state components.CriticalState) float64 {
	switch state {
	case components.CriticalStateNormal:
		return s.config.NormalBPM
	case components.CriticalStateSpeedingUp, components.CriticalStateFinishing:
		return (s.config.NormalBPM + s.config.CriticalBPM) / 2.0
	case components.CriticalStateAttacking:
		return s.config.CriticalBPM
	default:
		return s.config.NormalBPM
	}
}

// modulatesRandomly 只有非插值且非死亡的阶段做随机游走
func modulatesRandomly(state components.CriticalState) bool {
	switch state {
	case components.CriticalStateNormal, components.CriticalStateAttacking, components.CriticalStateAboutToDie:
		return true
	}
	return false
}

// BeatInterval 心率换算为心跳间隔（秒）
// 心率为 0 时不再有心跳
func BeatInterval(bpm float64) float64 {
	if bpm <= 0 {
		return math.Inf(1)
	}
	return 60.0 / bpm
}

// ResetBeat 从当前时间重新锚定心跳（病人初始化时调用）
func (s *HeartRateSystem) ResetBeat() {
	vitals, ok := ecs.GetComponent[*components.VitalStateComponent](s.entityManager, s.patient)
	if !ok {
		log.Printf("[HeartRateSystem] ERROR: %v (entity %d)", ErrPatientMissing, s.patient)
		return
	}
	now := s.clock.Now()
	vitals.LastBeatTime = now
	vitals.NextBeatTime = now + BeatInterval(vitals.CurrentBPM)
}
