// Package app 提供手术小游戏的应用包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/surgery/pkg/config"
	"github.com/decker502/surgery/pkg/game"
	"github.com/decker502/surgery/pkg/scenes"
	"github.com/decker502/surgery/pkg/systems"
	"github.com/decker502/surgery/pkg/types"
	"github.com/decker502/surgery/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// 逻辑屏幕尺寸
const (
	ScreenWidth  = 640
	ScreenHeight = 480
)

// AppName gdata 存储使用的应用名
const AppName = "surgery"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Vitals 生命体征调校参数，为 nil 时使用默认值
	Vitals *config.VitalsConfig
	// Tutorial 以教学模式开始
	Tutorial bool
	// Mute 不创建音频上下文（无声模式）
	Mute bool
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	monitorAudio *game.MonitorAudio
	tuning       *game.TuningStore
	vitals       *config.VitalsConfig
	verbose      bool
	tutorial     bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// toolKeys 数字键 → 外科工具
var toolKeys = map[ebiten.Key]types.ToolType{
	ebiten.Key1: types.ToolSuture,
	ebiten.Key2: types.ToolScalpel,
	ebiten.Key3: types.ToolGauze,
}

// NewApp 创建并初始化应用
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	base := cfg.Vitals
	if base == nil {
		base = config.DefaultVitalsConfig()
	}

	// 叠加玩家本地的调校覆盖值
	tuning := game.NewTuningStore(OpenStorage())
	vitals, err := tuning.Apply(base)
	if err != nil {
		log.Printf("[App] WARNING: Invalid tuning overrides, using base config: %v", err)
		vitals = base
	}

	var audioContext *audio.Context
	if !cfg.Mute {
		audioContext = audio.NewContext(game.MonitorSampleRate)
	}
	monitorAudio := game.NewMonitorAudio(audioContext, vitals.MonitorVolume)
	if err := monitorAudio.LoadSounds(vitals.BeepSound, vitals.LongToneSound); err != nil {
		log.Printf("[App] WARNING: Failed to load monitor sounds, using synthesized tones: %v", err)
	}
	log.Printf("[App] MonitorAudio initialized")

	a := &App{
		sceneManager: game.NewSceneManager(),
		monitorAudio: monitorAudio,
		tuning:       tuning,
		vitals:       vitals,
		verbose:      cfg.Verbose,
		tutorial:     cfg.Tutorial,
	}

	a.sceneManager.SetSceneFactory(a.newOperatingScene)
	scene := a.newOperatingScene()
	if scene == nil {
		return nil, fmt.Errorf("failed to create operating scene")
	}
	a.sceneManager.SwitchTo(scene)

	return a, nil
}

// newOperatingScene 每个场景使用独立的事件中心、教学状态和时钟
func (a *App) newOperatingScene() game.Scene {
	scene, err := scenes.NewOperatingScene(scenes.OperatingSceneConfig{
		Vitals:    a.vitals,
		Tutorial:  game.NewTutorialState(a.tutorial),
		Listeners: []systems.VitalsListener{a.monitorAudio},
	})
	if err != nil {
		log.Printf("[App] ERROR: Failed to create operating scene: %v", err)
		return nil
	}
	return scene
}

// OpenStorage 打开 gdata 存储
// 失败时返回 nil，调用方进入降级模式（仅内存）
func OpenStorage() *gdata.Manager {
	dir, err := utils.PrepareTuningStorage()
	if err != nil {
		log.Printf("[App] WARNING: Storage directory unavailable: %v", err)
	} else if dir != "" {
		log.Printf("[App] Tuning storage directory: %s", dir)
	}
	manager, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] WARNING: Failed to open gdata storage: %v (tuning overrides disabled)", err)
		return nil
	}
	return manager
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	a.handleKeys()

	deltaTime := 1.0 / 60.0
	a.sceneManager.Update(deltaTime)
	return nil
}

// handleKeys 键盘驱动医生事件
func (a *App) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		log.Printf("[App] New patient")
		a.sceneManager.Restart()
		return
	}

	scene, ok := a.sceneManager.GetCurrentScene().(*scenes.OperatingScene)
	if !ok {
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		scene.StartCrisis(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		scene.EndCrisis()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		scene.Defibrillate(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		scene.KillPatient()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		a.tutorial = !scene.Tutorial().IsTutorialActive()
		scene.SetTutorial(a.tutorial)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		scene.StartTutorialSurgery()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		scene.ToggleToolPickUpTutorial()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := scene.ReleaseTool(0); err != nil {
			log.Printf("[App] WARNING: %v", err)
		}
	}

	for key, tool := range toolKeys {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		if _, err := scene.ApplyTool(tool, 0); err != nil {
			log.Printf("[App] WARNING: Failed to apply %s: %v", tool, err)
		}
	}
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// Tuning 返回调校存储，用于退出时保存
func (a *App) Tuning() *game.TuningStore {
	return a.tuning
}

// Close 关闭当前场景，停止监护仪长鸣
func (a *App) Close() {
	if closer, ok := a.sceneManager.GetCurrentScene().(game.Disposable); ok {
		closer.Close()
	}
	a.monitorAudio.StopLongTone()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
