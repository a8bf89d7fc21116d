package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/surgery/pkg/app"
	"github.com/decker502/surgery/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "生命体征配置文件路径（默认使用内置 data/vitals.yaml）")
	tutorial   = flag.Bool("tutorial", false, "以教学模式开始")
	mute       = flag.Bool("mute", false, "关闭监护仪声音")
)

// loadVitals 读取生命体征配置，未指定路径时使用嵌入的默认配置
func loadVitals(path string) (*config.VitalsConfig, error) {
	if path != "" {
		return config.LoadVitalsConfig(path)
	}
	return config.ParseVitalsConfig(defaultVitalsYAML)
}

func main() {
	flag.Parse()

	vitals, err := loadVitals(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	gameApp, err := app.NewApp(app.Config{
		Verbose:  *verbose,
		Vitals:   vitals,
		Tutorial: *tutorial,
		Mute:     *mute,
	})
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}
	defer gameApp.Close()

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Surgery - Patient Monitor")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}

	if err := gameApp.Tuning().Save(); err != nil {
		log.Printf("[Main] WARNING: Failed to save tuning overrides: %v", err)
	}
}
