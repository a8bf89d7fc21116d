package ecs

import (
	"reflect"
	"testing"
)

// 测试组件类型定义
type testPulseComponent struct {
	BPM float64
}

type testHolderComponent struct {
	Doctor int
}

// hasEntity 不带组件过滤的查询会列出全部存活实体
func hasEntity(em *EntityManager, id EntityID) bool {
	for _, e := range em.GetEntitiesWith() {
		if e == id {
			return true
		}
	}
	return false
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}
	// ID 从 1 开始，0 保留为无效 ID
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}
	if !hasEntity(em, id1) {
		t.Error("Created entity should exist")
	}
}

func TestAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testPulseComponent{BPM: 80})

	comp, found := em.GetComponent(id, reflect.TypeOf(&testPulseComponent{}))
	if !found {
		t.Fatal("Component should be found")
	}
	if comp.(*testPulseComponent).BPM != 80 {
		t.Errorf("Expected BPM 80, got %f", comp.(*testPulseComponent).BPM)
	}
}

func TestGenericAccessors(t *testing.T) {
	t.Run("generic get matches reflection add", func(t *testing.T) {
		em := NewEntityManager()
		id := em.CreateEntity()
		em.AddComponent(id, &testPulseComponent{BPM: 170})

		pulse, ok := GetComponent[*testPulseComponent](em, id)
		if !ok {
			t.Fatal("Expected generic GetComponent to find component")
		}
		if pulse.BPM != 170 {
			t.Errorf("Expected BPM 170, got %f", pulse.BPM)
		}
	})

	t.Run("missing component returns zero value", func(t *testing.T) {
		em := NewEntityManager()
		id := em.CreateEntity()

		pulse, ok := GetComponent[*testPulseComponent](em, id)
		if ok || pulse != nil {
			t.Error("Expected missing component to return nil, false")
		}
	})

	t.Run("query by two components", func(t *testing.T) {
		em := NewEntityManager()
		both := em.CreateEntity()
		AddComponent(em, both, &testPulseComponent{})
		AddComponent(em, both, &testHolderComponent{Doctor: 1})
		only := em.CreateEntity()
		AddComponent(em, only, &testPulseComponent{})

		ids := GetEntitiesWith2[*testPulseComponent, *testHolderComponent](em)
		if len(ids) != 1 || ids[0] != both {
			t.Errorf("Expected only entity %d, got %v", both, ids)
		}
		if len(GetEntitiesWith1[*testPulseComponent](em)) != 2 {
			t.Error("Expected two entities with pulse component")
		}
	})

	t.Run("remove component", func(t *testing.T) {
		em := NewEntityManager()
		id := em.CreateEntity()
		AddComponent(em, id, &testHolderComponent{})
		RemoveComponent[*testHolderComponent](em, id)
		if HasComponent[*testHolderComponent](em, id) {
			t.Error("Component should be removed")
		}
	})
}

func TestDestroyEntityIsDeferred(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testPulseComponent{})

	em.DestroyEntity(id)
	// 标记删除后帧末才真正清理
	if !hasEntity(em, id) {
		t.Error("Entity should still exist before RemoveMarkedEntities")
	}

	em.RemoveMarkedEntities()
	if hasEntity(em, id) {
		t.Error("Entity should be removed after RemoveMarkedEntities")
	}
	if _, found := em.GetComponent(id, reflect.TypeOf(&testPulseComponent{})); found {
		t.Error("Components of destroyed entity should be gone")
	}
}
