package systems

import (
	"testing"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/config"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/entities"
	"github.com/decker502/surgery/pkg/game"
)

// recordingListener 记录所有监护仪输出
type recordingListener struct {
	bpms      []float64
	beeps     int
	longTones int
}

func (l *recordingListener) OnBPMChanged(bpm float64) { l.bpms = append(l.bpms, bpm) }
func (l *recordingListener) OnMonitorBeep() { l.beeps++ }
func (l *recordingListener) OnMonitorLongTone() { l.longTones++ }

// recordingNotifier 记录危机通知
type recordingNotifier struct {
	adverted      int
	timeRemaining []float64
}

func (n *recordingNotifier) PatientCriticalAdverted() { n.adverted++ }
func (n *recordingNotifier) InformPatientAboutToDie(seconds float64) { n.timeRemaining = append(n.timeRemaining, seconds) }

// scriptedRandom 按顺序返回预设值，用完后循环
type scriptedRandom struct {
	values []float64
	index  int
}

func (r *scriptedRandom) Float64() float64 {
	if len(r.values) == 0 {
		return 0.5
	}
	v := r.values[r.index%len(r.values)]
	r.index++
	return v
}

// vitalsFixture 一个病人 + 所有生命体征系统
type vitalsFixture struct {
	em       *ecs.EntityManager
	clock    *game.SimClock
	cfg      *config.VitalsConfig
	patient  ecs.EntityID
	tutorial *game.TutorialState
	listener *recordingListener
	notifier *recordingNotifier
	random   *scriptedRandom

	critical  *CriticalEventSystem
	heartRate *HeartRateSystem
}

// newVitalsFixture 创建测试夹具，默认随机游走保持不变（0.5 落在中间三分之一）
func newVitalsFixture(t *testing.T) *vitalsFixture {
	t.Helper()

	f := &vitalsFixture{
		em:       ecs.NewEntityManager(),
		clock:    game.NewSimClock(0),
		cfg:      config.DefaultVitalsConfig(),
		tutorial: game.NewTutorialState(false),
		listener: &recordingListener{},
		notifier: &recordingNotifier{},
		random:   &scriptedRandom{values: []float64{0.5}},
	}

	patient, err := entities.NewPatientEntity(f.em, f.cfg, f.clock.Now())
	if err != nil {
		t.Fatalf("NewPatientEntity failed: %v", err)
	}
	f.patient = patient

	f.critical = NewCriticalEventSystem(f.em, patient, f.cfg, f.clock, f.tutorial, f.listener, f.notifier)
	f.heartRate = NewHeartRateSystem(f.em, patient, f.cfg, f.clock, f.random, f.listener)
	return f
}

// step 推进一帧
func (f *vitalsFixture) step(dt float64) {
	f.clock.Advance(dt)
	f.critical.Update(dt)
	f.heartRate.Update(dt)
}

// runUntil 以固定步长推进到目标时间
// 步长使用 2 的幂分数，保证浮点累加精确
func (f *vitalsFixture) runUntil(target, dt float64) {
	for f.clock.Now() < target {
		f.step(dt)
	}
}

func (f *vitalsFixture) vitals(t *testing.T) *components.VitalStateComponent {
	t.Helper()
	vitals, ok := ecs.GetComponent[*components.VitalStateComponent](f.em, f.patient)
	if !ok {
		t.Fatal("patient has no VitalStateComponent")
	}
	return vitals
}

func approxEqual(a, b, tolerance float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
