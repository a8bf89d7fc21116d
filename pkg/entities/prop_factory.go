package entities

import (
	"fmt"
	"log"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/types"
)

// PropFactory 手术道具工厂
// 只负责在 ECS 中登记道具实体；道具的模型、位置等表现由外部渲染层根据 OnSpawn 回调处理
type PropFactory struct {
	entityManager *ecs.EntityManager

	// OnSpawn 道具生成回调（可为 nil）
	OnSpawn func(kind components.PropKind, id ecs.EntityID)
}

// NewPropFactory 创建道具工厂
func NewPropFactory(em *ecs.EntityManager) *PropFactory {
	return &PropFactory{entityManager: em}
}

// SpawnTool 生成外科工具实体并交给 playerNum 操控
func (f *PropFactory) SpawnTool(kind components.PropKind, tool types.ToolType, playerNum int) (ecs.EntityID, error) {
	if f.entityManager == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if !tool.IsSurgical() {
		return 0, fmt.Errorf("%s is not a surgery tool", tool)
	}

	entityID := f.entityManager.CreateEntity()
	f.entityManager.AddComponent(entityID, &components.SurgeryToolComponent{
		Type:      tool,
		Prop:      kind,
		PlayerNum: playerNum,
	})

	log.Printf("[PropFactory] Spawned %s (Entity ID: %d) for player %d", kind, entityID, playerNum)
	f.notify(kind, entityID)
	return entityID, nil
}

// SpawnHotspot 生成手术热点/切口轨迹实体
func (f *PropFactory) SpawnHotspot(kind components.PropKind) (ecs.EntityID, error) {
	if f.entityManager == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}

	tool, ok := hotspotTool(kind)
	if !ok {
		return 0, fmt.Errorf("%s is not a hotspot prop", kind)
	}

	entityID := f.entityManager.CreateEntity()
	f.entityManager.AddComponent(entityID, &components.HotspotComponent{
		Kind: kind,
		Tool: tool,
	})

	log.Printf("[PropFactory] Spawned %s (Entity ID: %d)", kind, entityID)
	f.notify(kind, entityID)
	return entityID, nil
}

func (f *PropFactory) notify(kind components.PropKind, id ecs.EntityID) {
	if f.OnSpawn != nil {
		f.OnSpawn(kind, id)
	}
}

// hotspotTool 热点对应的工具
func hotspotTool(kind components.PropKind) (types.ToolType, bool) {
	switch kind {
	case components.PropSutureHotspots:
		return types.ToolSuture, true
	case components.PropScalpelTrack, components.PropDuplicateScalpelTrack:
		return types.ToolScalpel, true
	case components.PropGauzeHotspots:
		return types.ToolGauze, true
	}
	return types.ToolNone, false
}
