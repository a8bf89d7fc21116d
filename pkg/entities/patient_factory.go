package entities

import (
	"fmt"
	"log"

	"github.com/decker502/surgery/pkg/components"
	"github.com/decker502/surgery/pkg/config"
	"github.com/decker502/surgery/pkg/ecs"
	"github.com/decker502/surgery/pkg/types"
)

// NewPatientEntity 创建病人实体
// 病人以正常心率、NORMAL 阶段开始，生命周期内只有一个 VitalStateComponent
//
// 参数:
//   - em: 实体管理器
//   - cfg: 生命体征调校参数
//   - now: 当前模拟时间（用于锚定第一次心跳）
//
// 返回:
//   - ecs.EntityID: 病人实体ID
//   - error: 参数非法时返回错误
func NewPatientEntity(em *ecs.EntityManager, cfg *config.VitalsConfig, now float64) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if cfg == nil {
		return 0, fmt.Errorf("vitals config cannot be nil")
	}

	entityID := em.CreateEntity()

	em.AddComponent(entityID, &components.VitalStateComponent{
		CurrentBPM:     cfg.NormalBPM,
		CriticalState:  components.CriticalStateNormal,
		StateStartTime: now,
		LastBeatTime:   now,
		NextBeatTime:   now + 60.0/cfg.NormalBPM,
	})
	em.AddComponent(entityID, &components.SurgeryTaskComponent{
		RequiredTool: types.ToolNone,
	})

	log.Printf("[PatientFactory] Patient created (Entity ID: %d) at %.1f BPM", entityID, cfg.NormalBPM)
	return entityID, nil
}

// NewDoctorEntity 创建医生实体，初始输入启用、空手
func NewDoctorEntity(em *ecs.EntityManager, number int) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if number < 0 {
		return 0, fmt.Errorf("invalid doctor number %d", number)
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.DoctorComponent{
		Number:       number,
		InputEnabled: true,
		HeldTool:     types.ToolNone,
	})
	return entityID, nil
}
