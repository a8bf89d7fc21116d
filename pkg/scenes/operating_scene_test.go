package scenes

import (
	"strings"
	"testing"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/config"
	"github.com/decker502/surgery/pkg/game"
	"github.com/decker502/surgery/pkg/systems"
	"github.com/decker502/surgery/pkg/types"
)

// steadyRandom 随机游走保持不变
type steadyRandom struct{}

func (steadyRandom) Float64() float64 { return 0.5 }

// crisisRecorder 记录转发的危机提示
type crisisRecorder struct {
	bpm           float64
	timeRemaining []float64
	adverted      int
}

func (r *crisisRecorder) OnBPMChanged(bpm float64) { r.bpm = bpm }
func (r *crisisRecorder) OnMonitorBeep() {}
func (r *crisisRecorder) OnMonitorLongTone() {}
func (r *crisisRecorder) OnTimeRemainingBeforeDeath(seconds float64) { r.timeRemaining = append(r.timeRemaining, seconds) }
func (r *crisisRecorder) OnCrisisAdverted() { r.adverted++ }

func newTestScene(t *testing.T, listeners ...systems.VitalsListener) *OperatingScene {
	t.Helper()
	scene, err := NewOperatingScene(OperatingSceneConfig{
		Vitals:    config.DefaultVitalsConfig(),
		Random:    steadyRandom{},
		Listeners: listeners,
	})
	if err != nil {
		t.Fatalf("NewOperatingScene failed: %v", err)
	}
	t.Cleanup(scene.Close)
	return scene
}

func runScene(scene *OperatingScene, target float64) {
	for scene.Clock().Now() < target {
		scene.Update(0.25)
	}
}

func countEvents(events *game.DoctorEvents, eventType game.EventType) *int {
	count := new(int)
	events.Subscribe(func(e game.DoctorEvent) {
		if e.Type == eventType {
			*count++
		}
	})
	return count
}

// TestOperatingScene_CrisisTimeline 通过事件驱动完整的危机时间线
func TestOperatingScene_CrisisTimeline(t *testing.T) {
	recorder := &crisisRecorder{}
	scene := newTestScene(t, recorder)
	gameOvers := countEvents(scene.Events(), game.EventGameOver)

	scene.Events().StartPatientCriticalEvent(180)

	runScene(scene, 60)
	if scene.CriticalState() != components.CriticalStateAttacking {
		t.Errorf("Expected ATTACKING at t=60, got %s", scene.CriticalState())
	}
	if scene.BPM() != 170 {
		t.Errorf("Expected BPM 170 at t=60, got %v", scene.BPM())
	}
	if recorder.bpm != 170 {
		t.Errorf("Extra listener should see BPM 170, got %v", recorder.bpm)
	}

	runScene(scene, 90)
	if scene.CriticalState() != components.CriticalStateSpeedingUpToDie {
		t.Errorf("Expected SPEEDING_UP_TO_DIE at t=90, got %s", scene.CriticalState())
	}
	if len(recorder.timeRemaining) != 1 || recorder.timeRemaining[0] != 90 {
		t.Errorf("Expected time remaining [90], got %v", recorder.timeRemaining)
	}
	if remaining, ok := scene.TimeRemaining(); !ok || remaining != 90 {
		t.Errorf("Expected 90s on the monitor, got %v (%v)", remaining, ok)
	}

	runScene(scene, 180)
	if scene.CriticalState() != components.CriticalStateDead {
		t.Errorf("Expected DEAD at t=180, got %s", scene.CriticalState())
	}
	if scene.BPM() != 0 {
		t.Errorf("Expected BPM 0, got %v", scene.BPM())
	}

	runScene(scene, 185)
	if *gameOvers != 1 {
		t.Errorf("Expected GameOver published once, got %d", *gameOvers)
	}
	if !strings.Contains(scene.StatusText(), "FLATLINE") {
		t.Errorf("Expected flatline on monitor, got:\n%s", scene.StatusText())
	}
}

// TestOperatingScene_DefibrillationEndsCrisis 除颤化解危机后回到正常心率
func TestOperatingScene_DefibrillationEndsCrisis(t *testing.T) {
	recorder := &crisisRecorder{}
	scene := newTestScene(t, recorder)
	ended := countEvents(scene.Events(), game.EventCriticalEnded)

	scene.StartCrisis(60)
	runScene(scene, 25)

	for i := 0; i < config.DefaultDefibrillationsRequired; i++ {
		scene.Defibrillate(0)
	}

	if scene.CriticalState() != components.CriticalStateFinishing {
		t.Fatalf("Expected FINISHING after crisis adverted, got %s", scene.CriticalState())
	}
	if *ended != 1 {
		t.Errorf("Expected adverted routed as one crisis end, got %d", *ended)
	}
	if recorder.adverted != 1 {
		t.Errorf("Expected one adverted notification, got %d", recorder.adverted)
	}

	runScene(scene, 27)
	if scene.CriticalState() != components.CriticalStateNormal {
		t.Errorf("Expected NORMAL after recovery, got %s", scene.CriticalState())
	}
	if scene.BPM() != 80 {
		t.Errorf("Expected BPM 80 after recovery, got %v", scene.BPM())
	}

	// 多余的除颤没有效果
	scene.Defibrillate(1)
	if recorder.adverted != 1 {
		t.Errorf("Extra defibrillation should not advert again, got %d", recorder.adverted)
	}
}

// TestOperatingScene_CrisisEndedEarly 危机开始后 10 秒结束
func TestOperatingScene_CrisisEndedEarly(t *testing.T) {
	scene := newTestScene(t)

	scene.StartCrisis(120)
	runScene(scene, 10)
	scene.EndCrisis()

	vitals, ok := scene.VitalState()
	if !ok {
		t.Fatal("Expected patient vitals")
	}
	if vitals.CriticalState != components.CriticalStateFinishing {
		t.Errorf("Expected FINISHING, got %s", vitals.CriticalState)
	}
	if vitals.RevertBPM != 102.5 {
		t.Errorf("Expected revert BPM 102.5, got %v", vitals.RevertBPM)
	}
	if vitals.DefibrillationsRemaining != 0 {
		t.Errorf("Expected counter 0, got %d", vitals.DefibrillationsRemaining)
	}

	runScene(scene, 11)
	if scene.BPM() != 80 {
		t.Errorf("Expected BPM 80 after recovery window, got %v", scene.BPM())
	}
}

// TestOperatingScene_DefaultCrisisLength 未指定时长时使用麻醉时钟
func TestOperatingScene_DefaultCrisisLength(t *testing.T) {
	scene := newTestScene(t)
	scene.StartCrisis(0)

	vitals, _ := scene.VitalState()
	if vitals.CycleDuration != config.DefaultAnestheticClockLength {
		t.Errorf("Expected cycle %v, got %v", config.DefaultAnestheticClockLength, vitals.CycleDuration)
	}
}

// TestOperatingScene_Tutorial 教学模式下危机不会超时
func TestOperatingScene_Tutorial(t *testing.T) {
	scene := newTestScene(t)
	scene.SetTutorial(true)
	scene.StartCrisis(180)

	runScene(scene, 600)
	if scene.CriticalState() != components.CriticalStateAttacking {
		t.Errorf("Expected tutorial crisis held in ATTACKING, got %s", scene.CriticalState())
	}

	for i := 0; i < config.DefaultDefibrillationsRequired; i++ {
		scene.Defibrillate(0)
	}
	if scene.Tutorial().AdvertedCount() != 1 {
		t.Errorf("Expected tutorial informed once, got %d", scene.Tutorial().AdvertedCount())
	}
	if scene.CriticalState() != components.CriticalStateFinishing {
		t.Errorf("Expected FINISHING, got %s", scene.CriticalState())
	}
}

// TestOperatingScene_KillPatient 外部死亡事件
func TestOperatingScene_KillPatient(t *testing.T) {
	scene := newTestScene(t)
	gameOvers := countEvents(scene.Events(), game.EventGameOver)

	scene.KillPatient()
	runScene(scene, 2)

	if scene.CriticalState() != components.CriticalStateDead {
		t.Errorf("Expected DEAD, got %s", scene.CriticalState())
	}
	if *gameOvers != 1 {
		t.Errorf("GameOver should not be republished, got %d", *gameOvers)
	}
}

// TestOperatingScene_SurgeryFlow 手术子任务和工具操控
func TestOperatingScene_SurgeryFlow(t *testing.T) {
	scene := newTestScene(t)

	scene.Events().PatientNeedsStitches(5)
	if got := scene.Surgery().RequiredToolType(); got != types.ToolSuture {
		t.Fatalf("Expected suture required, got %s", got)
	}

	control, err := scene.ApplyTool(types.ToolSuture, 0)
	if err != nil {
		t.Fatalf("ApplyTool failed: %v", err)
	}
	if control.Prop != components.PropSutureTool {
		t.Errorf("Expected suture prop, got %s", control.Prop)
	}
	if scene.HeldTool(0) != types.ToolSuture {
		t.Errorf("Expected doctor 0 holding suture, got %s", scene.HeldTool(0))
	}
	if !scene.Surgery().IsActionPromptVisible() {
		t.Error("Expected action prompt after picking up a surgery tool")
	}

	if !scene.DoctorInteracts(0) {
		t.Error("Patient should accept interaction")
	}
	if scene.Surgery().IsActionPromptVisible() {
		t.Error("Expected prompt hidden once interacting")
	}

	if err := scene.ReleaseTool(0); err != nil {
		t.Fatalf("ReleaseTool failed: %v", err)
	}
	if scene.HeldTool(0) != types.ToolNone {
		t.Errorf("Expected empty hands after release, got %s", scene.HeldTool(0))
	}
	if err := scene.ReleaseTool(0); err == nil {
		t.Error("Expected error releasing twice")
	}

	scene.Events().PatientNeedsCutOpen(5)
	if got := scene.Surgery().RequiredToolType(); got != types.ToolScalpel {
		t.Errorf("Expected scalpel required, got %s", got)
	}
	scene.Events().PatientNeedsBloodSoak(5)
	if got := scene.Surgery().RequiredToolType(); got != types.ToolGauze {
		t.Errorf("Expected gauze required, got %s", got)
	}
}

// TestOperatingScene_TutorialSurgery 教学回调驱动手术子任务和“拿起工具”阶段
func TestOperatingScene_TutorialSurgery(t *testing.T) {
	scene := newTestScene(t)

	t.Run("inactive tutorial ignores surgery start", func(t *testing.T) {
		scene.StartTutorialSurgery()
		if got := scene.Surgery().RequiredToolType(); got != types.ToolNone {
			t.Errorf("Expected no required tool outside tutorial, got %s", got)
		}
	})

	scene.SetTutorial(true)

	t.Run("surgery start requests tasks", func(t *testing.T) {
		scene.StartTutorialSurgery()
		if got := scene.Surgery().RequiredToolType(); got != types.ToolGauze {
			t.Errorf("Expected gauze required after tutorial surgery start, got %s", got)
		}
	})

	t.Run("pick up step shows prompt", func(t *testing.T) {
		// 除颤器不是外科工具，只有教学阶段会让提示出现
		scene.Defibrillate(0)
		if scene.Surgery().IsActionPromptVisible() {
			t.Fatal("Prompt should stay hidden outside the pick up step")
		}

		scene.ToggleToolPickUpTutorial()
		if !scene.Tutorial().IsToolPickUpStep() {
			t.Fatal("Expected pick up step active")
		}
		if !strings.Contains(scene.StatusText(), "Pick up a surgery tool") {
			t.Errorf("Expected pick up hint in status text:\n%s", scene.StatusText())
		}

		scene.Defibrillate(1)
		if !scene.Surgery().IsActionPromptVisible() {
			t.Error("Expected prompt after picking up a tool during the step")
		}

		scene.ToggleToolPickUpTutorial()
		if scene.Tutorial().IsToolPickUpStep() {
			t.Error("Expected pick up step ended")
		}
		if scene.Surgery().IsActionPromptVisible() {
			t.Error("Expected prompt hidden when the step ends")
		}
	})
}

// TestOperatingScene_CloseDetachesTutorial 关闭后教学回调不再驱动系统
func TestOperatingScene_CloseDetachesTutorial(t *testing.T) {
	tutorial := game.NewTutorialState(true)
	scene, err := NewOperatingScene(OperatingSceneConfig{
		Vitals:   config.DefaultVitalsConfig(),
		Tutorial: tutorial,
		Random:   steadyRandom{},
	})
	if err != nil {
		t.Fatalf("NewOperatingScene failed: %v", err)
	}
	scene.Close()

	tutorial.StartSurgery()
	tutorial.StartToolPickUp()
	tutorial.InformToolPickedUp(types.ToolScalpel, 0)

	if got := scene.Surgery().RequiredToolType(); got != types.ToolNone {
		t.Errorf("Closed scene should ignore tutorial surgery, got %s", got)
	}
	if scene.Surgery().IsActionPromptVisible() {
		t.Error("Closed scene should ignore tutorial pick ups")
	}
}

// TestOperatingScene_ControlReleasedDirectly 直接归还的操控权不再算作持有
func TestOperatingScene_ControlReleasedDirectly(t *testing.T) {
	scene := newTestScene(t)

	control, err := scene.ApplyTool(types.ToolScalpel, 0)
	if err != nil {
		t.Fatalf("ApplyTool failed: %v", err)
	}
	control.Release()

	if got := scene.HeldTool(0); got != types.ToolNone {
		t.Errorf("Expected empty hands after direct release, got %s", got)
	}
	if err := scene.ReleaseTool(0); err == nil {
		t.Error("Expected error releasing an already released control")
	}

	if _, err := scene.ApplyTool(types.ToolGauze, 0); err != nil {
		t.Fatalf("ApplyTool after direct release failed: %v", err)
	}
	if got := scene.HeldTool(0); got != types.ToolGauze {
		t.Errorf("Expected doctor 0 holding gauze, got %s", got)
	}
}

// TestOperatingScene_Close 关闭后不再响应事件
func TestOperatingScene_Close(t *testing.T) {
	events := game.NewDoctorEvents()
	scene, err := NewOperatingScene(OperatingSceneConfig{
		Vitals: config.DefaultVitalsConfig(),
		Events: events,
		Random: steadyRandom{},
	})
	if err != nil {
		t.Fatalf("NewOperatingScene failed: %v", err)
	}
	if events.SubscriberCount() != 1 {
		t.Fatalf("Expected scene subscribed, got %d subscribers", events.SubscriberCount())
	}

	if _, err := scene.ApplyTool(types.ToolGauze, 1); err != nil {
		t.Fatalf("ApplyTool failed: %v", err)
	}

	scene.Close()
	scene.Close()

	if events.SubscriberCount() != 0 {
		t.Errorf("Expected no subscribers after Close, got %d", events.SubscriberCount())
	}
	if scene.HeldTool(1) != types.ToolNone {
		t.Error("Close should release held tools")
	}

	events.StartPatientCriticalEvent(60)
	scene.Update(1)
	if scene.CriticalState() != components.CriticalStateNormal {
		t.Errorf("Closed scene should ignore events, got %s", scene.CriticalState())
	}
}

func TestOperatingScene_StatusText(t *testing.T) {
	scene := newTestScene(t)
	text := scene.StatusText()

	for _, want := range []string{"BPM: 80", "State: NORMAL"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in status text:\n%s", want, text)
		}
	}
}

func TestNewOperatingScene_RequiresConfig(t *testing.T) {
	if _, err := NewOperatingScene(OperatingSceneConfig{}); err == nil {
		t.Error("Expected error without vitals config")
	}
}
