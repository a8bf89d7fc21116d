package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 场景工厂函数类型
// 用于重新开始一台手术时创建全新的场景，避免循环依赖
type SceneFactory func() Scene

// SceneManager manages the game's high-level state by controlling which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene to the provided scene.
// The previous scene is closed if it implements Disposable.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene == scene {
		return
	}
	if disposable, ok := sm.currentScene.(Disposable); ok {
		disposable.Close()
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// Restart 通过工厂函数重建当前场景（重新开始手术）
func (sm *SceneManager) Restart() {
	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] ERROR: SceneFactory not set")
		return
	}

	newScene := sm.sceneFactory()
	if newScene == nil {
		log.Printf("[SceneManager] ERROR: Scene factory returned nil")
		return
	}
	sm.SwitchTo(newScene)
	log.Printf("[SceneManager] Scene restarted")
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
