// verify_crisis 无界面运行一次心脏危机，打印状态时间线
//
// 用法：
//
//	go run ./cmd/verify_crisis -duration 180
//	go run ./cmd/verify_crisis -duration 120 -defib-at 50
//	go run ./cmd/verify_crisis -duration 120 -end-at 10 -verbose
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/config"
	"github.com/decker502/surgery/pkg/game"
	"github.com/decker502/surgery/pkg/scenes"
	"github.com/decker502/surgery/pkg/systems"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "生命体征配置文件路径（默认使用内置默认值）")
	duration   = flag.Float64("duration", 0, "危机时长（秒），0 表示使用麻醉时钟时长")
	dt         = flag.Float64("dt", 1.0/60.0, "每帧时间步长（秒）")
	runFor     = flag.Float64("run", 0, "总模拟时长（秒），0 表示危机时长 + 5 秒")
	tutorial   = flag.Bool("tutorial", false, "教学模式")
	defibAt    = flag.Float64("defib-at", -1, "在该时刻连续除颤直到危机化解，负数表示不除颤")
	endAt      = flag.Float64("end-at", -1, "在该时刻结束危机，负数表示不结束")
)

// timelinePrinter 打印监护仪通知
type timelinePrinter struct {
	clock   game.Clock
	lastBPM float64
	beeps   int
}

func (p *timelinePrinter) OnBPMChanged(bpm float64) {
	if *verbose || int(bpm)/10 != int(p.lastBPM)/10 {
		fmt.Printf("[%7.2fs] BPM %.0f\n", p.clock.Now(), bpm)
	}
	p.lastBPM = bpm
}

func (p *timelinePrinter) OnMonitorBeep() { p.beeps++ }

func (p *timelinePrinter) OnMonitorLongTone() {
	fmt.Printf("[%7.2fs] *** LONG TONE ***\n", p.clock.Now())
}

func (p *timelinePrinter) OnTimeRemainingBeforeDeath(seconds float64) {
	fmt.Printf("[%7.2fs] Patient about to die in %.1fs\n", p.clock.Now(), seconds)
}

func (p *timelinePrinter) OnCrisisAdverted() {
	fmt.Printf("[%7.2fs] Crisis adverted\n", p.clock.Now())
}

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	vitals := config.DefaultVitalsConfig()
	if *configPath != "" {
		loaded, err := config.LoadVitalsConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
			os.Exit(1)
		}
		vitals = loaded
	}

	if *dt <= 0 {
		fmt.Fprintf(os.Stderr, "-dt 必须大于 0\n")
		os.Exit(1)
	}

	clock := game.NewSimClock(0)
	printer := &timelinePrinter{clock: clock}
	scene, err := scenes.NewOperatingScene(scenes.OperatingSceneConfig{
		Vitals:    vitals,
		Clock:     clock,
		Tutorial:  game.NewTutorialState(*tutorial),
		Listeners: []systems.VitalsListener{printer},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "场景创建失败: %v\n", err)
		os.Exit(1)
	}
	defer scene.Close()

	crisisLength := *duration
	if crisisLength <= 0 {
		crisisLength = vitals.AnestheticClockLength
	}
	total := *runFor
	if total <= 0 {
		total = crisisLength + 5
	}

	fmt.Printf("=== Crisis %.1fs, dt %.4fs, tutorial=%v ===\n", crisisLength, *dt, *tutorial)
	scene.StartCrisis(crisisLength)

	lastState := scene.CriticalState()
	fmt.Printf("[%7.2fs] State %s\n", clock.Now(), lastState)

	defibDone := false
	endDone := false
	for clock.Now() < total {
		if !defibDone && *defibAt >= 0 && clock.Now() >= *defibAt {
			defibDone = true
			defibrillate(scene, vitals.DefibrillationsRequired)
		}
		if !endDone && *endAt >= 0 && clock.Now() >= *endAt {
			endDone = true
			fmt.Printf("[%7.2fs] Crisis ended by trigger\n", clock.Now())
			scene.EndCrisis()
		}

		scene.Update(*dt)

		if state := scene.CriticalState(); state != lastState {
			fmt.Printf("[%7.2fs] State %s -> %s (BPM %.0f)\n", clock.Now(), lastState, state, scene.BPM())
			lastState = state
		}
		if lastState == components.CriticalStateDead {
			break
		}
	}

	fmt.Printf("=== Final: %s, BPM %.0f, beats %d, beeps %d ===\n",
		scene.CriticalState(), scene.BPM(), scene.BeatCount(), printer.beeps)
}

// defibrillate 连续除颤，直到危机化解或次数用完
func defibrillate(scene *scenes.OperatingScene, attempts int) {
	for i := 0; i < attempts+1 && scene.CriticalState() != components.CriticalStateFinishing; i++ {
		scene.Defibrillate(0)
		vitals, _ := scene.VitalState()
		fmt.Printf("[%7.2fs] Defibrillation, %d remaining\n", scene.Clock().Now(), vitals.DefibrillationsRemaining)
	}
}
