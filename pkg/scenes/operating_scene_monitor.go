package scenes

import (
	"fmt"
	"math"
	"strings"

	"github.com/decker502/surgery/pkg/game"
)

// monitorDisplay 监护仪屏幕读数
// 作为 VitalsListener 和 CrisisListener 接收通知，Draw 时转成文字
type monitorDisplay struct {
	clock game.Clock

	bpm      float64
	beeps    int
	flatline bool
	adverted int

	// deadline 预计死亡时间（模拟时钟），0 表示没有倒计时
	deadline float64
}

func (d *monitorDisplay) OnBPMChanged(bpm float64) { d.bpm = bpm }
func (d *monitorDisplay) OnMonitorBeep() { d.beeps++ }
func (d *monitorDisplay) OnMonitorLongTone() {
	d.flatline = true
	d.deadline = 0
}
func (d *monitorDisplay) OnCrisisAdverted() {
	d.adverted++
	d.deadline = 0
}

// OnTimeRemainingBeforeDeath 按模拟时钟换算成预计死亡时间
func (d *monitorDisplay) OnTimeRemainingBeforeDeath(seconds float64) {
	d.deadline = d.clock.Now() + seconds
}

func (d *monitorDisplay) clearDeadline() {
	d.deadline = 0
}

// TimeRemaining 距离死亡的剩余秒数，没有倒计时返回 false
func (s *OperatingScene) TimeRemaining() (float64, bool) {
	if s.display.deadline == 0 {
		return 0, false
	}
	return math.Max(0, s.display.deadline-s.clock.Now()), true
}

// StatusText 监护仪读数文本
func (s *OperatingScene) StatusText() string {
	var b strings.Builder

	if s.display.flatline {
		fmt.Fprintf(&b, "BPM: ---  (FLATLINE)\n")
	} else {
		fmt.Fprintf(&b, "BPM: %.0f\n", s.display.bpm)
	}
	fmt.Fprintf(&b, "State: %s\n", s.CriticalState())

	if vitals, ok := s.VitalState(); ok && vitals.DefibrillationsRemaining > 0 {
		fmt.Fprintf(&b, "Defibrillations needed: %d\n", vitals.DefibrillationsRemaining)
	}
	if remaining, ok := s.TimeRemaining(); ok {
		fmt.Fprintf(&b, "Time to death: %.1fs\n", remaining)
	}
	if tool := s.surgeryTaskSystem.RequiredToolType(); tool.IsSurgical() {
		fmt.Fprintf(&b, "Required tool: %s\n", tool)
	}
	if s.surgeryTaskSystem.IsActionPromptVisible() {
		fmt.Fprintf(&b, "[Operate]\n")
	}
	if s.tutorial.IsTutorialActive() {
		fmt.Fprintf(&b, "Tutorial\n")
		if s.tutorial.IsToolPickUpStep() {
			fmt.Fprintf(&b, "Pick up a surgery tool\n")
		}
	}
	fmt.Fprintf(&b, "Time: %.1fs  Beats: %d  Adverted: %d\n", s.clock.Now(), s.BeatCount(), s.display.adverted)
	b.WriteString("\n[C] crisis  [E] end  [D] defibrillate  [K] kill  [T] tutorial\n")
	b.WriteString("[1/2/3] suture/scalpel/gauze  [R] release  [N] new patient\n")
	b.WriteString("[S] tutorial surgery  [P] pick-up step")
	return b.String()
}
