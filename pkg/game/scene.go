package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a game scene (e.g., the operating room).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Disposable 可选接口：场景被替换时释放资源
//
// 手术场景在这里取消对 DoctorEvents 的订阅、停止监护仪长鸣，
// 避免旧场景继续响应新场景的事件
type Disposable interface {
	Close()
}
