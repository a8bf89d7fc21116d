package game

import (
	"log"
	"sync"

	"github.com/decker502/surgery/pkg/types"
)

// EventType 医生/病人事件类型
type EventType int

const (
	// EventCriticalStart 病人心脏危机开始，Duration 为危机周期
	EventCriticalStart EventType = iota
	// EventCriticalEnded 危机结束（解除），Duration 仅为签名兼容
	EventCriticalEnded
	// EventCriticalAdverted 除颤成功，危机被化解
	EventCriticalAdverted
	// EventPatientAboutToDie 病人即将死亡，Seconds 为剩余时间
	EventPatientAboutToDie
	// EventGameOver 病人死亡 / 游戏结束
	EventGameOver
	// EventNeedsStitches 病人需要缝合
	EventNeedsStitches
	// EventNeedsCutOpen 病人需要切开
	EventNeedsCutOpen
	// EventNeedsBloodSoak 病人需要吸血
	EventNeedsBloodSoak
	// EventToolPickedUpForSurgery 医生拿起了外科工具
	EventToolPickedUpForSurgery
	// EventToolDroppedForSurgery 医生放下了外科工具
	EventToolDroppedForSurgery
)

// String 返回事件类型名称（用于日志）
func (e EventType) String() string {
	switch e {
	case EventCriticalStart:
		return "CriticalStart"
	case EventCriticalEnded:
		return "CriticalEnded"
	case EventCriticalAdverted:
		return "CriticalAdverted"
	case EventPatientAboutToDie:
		return "PatientAboutToDie"
	case EventGameOver:
		return "GameOver"
	case EventNeedsStitches:
		return "NeedsStitches"
	case EventNeedsCutOpen:
		return "NeedsCutOpen"
	case EventNeedsBloodSoak:
		return "NeedsBloodSoak"
	case EventToolPickedUpForSurgery:
		return "ToolPickedUpForSurgery"
	case EventToolDroppedForSurgery:
		return "ToolDroppedForSurgery"
	default:
		return "Unknown"
	}
}

// DoctorEvent 事件载荷
// 不同事件只使用其中部分字段
type DoctorEvent struct {
	Type     EventType
	Duration float64
	Seconds  float64
	Tool     types.ToolType
}

// EventHandler 事件处理函数
type EventHandler func(DoctorEvent)

// DoctorEvents 医生事件中心
//
// 显式的观察者注册表：
//   - Subscribe 返回 Subscription，调用方在释放资源时 Unsubscribe
//   - 派发是同步的，在调用方所在的帧内完成
//   - 处理函数在锁外调用，允许处理函数内再次发布事件或取消订阅
type DoctorEvents struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]EventHandler
	order    []int
}

// Subscription 订阅句柄
type Subscription struct {
	events *DoctorEvents
	id     int
	once   sync.Once
}

// NewDoctorEvents 创建事件中心
func NewDoctorEvents() *DoctorEvents {
	return &DoctorEvents{
		handlers: make(map[int]EventHandler),
	}
}

// Subscribe 注册事件处理函数
// 处理函数按注册顺序调用
func (de *DoctorEvents) Subscribe(handler EventHandler) *Subscription {
	de.mu.Lock()
	defer de.mu.Unlock()

	de.nextID++
	id := de.nextID
	de.handlers[id] = handler
	de.order = append(de.order, id)

	return &Subscription{events: de, id: id}
}

// Unsubscribe 取消订阅，可重复调用
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.events.remove(s.id)
	})
}

func (de *DoctorEvents) remove(id int) {
	de.mu.Lock()
	defer de.mu.Unlock()

	delete(de.handlers, id)
	for i, existing := range de.order {
		if existing == id {
			de.order = append(de.order[:i], de.order[i+1:]...)
			break
		}
	}
}

// SubscriberCount 当前订阅者数量
func (de *DoctorEvents) SubscriberCount() int {
	de.mu.Lock()
	defer de.mu.Unlock()
	return len(de.handlers)
}

// Publish 同步派发事件
func (de *DoctorEvents) Publish(event DoctorEvent) {
	de.mu.Lock()
	snapshot := make([]EventHandler, 0, len(de.order))
	for _, id := range de.order {
		snapshot = append(snapshot, de.handlers[id])
	}
	de.mu.Unlock()

	if len(snapshot) == 0 {
		log.Printf("[DoctorEvents] %s published with no subscribers", event.Type)
		return
	}

	for _, handler := range snapshot {
		handler(event)
	}
}

// StartPatientCriticalEvent 发布危机开始事件
func (de *DoctorEvents) StartPatientCriticalEvent(duration float64) {
	de.Publish(DoctorEvent{Type: EventCriticalStart, Duration: duration})
}

// EndPatientCriticalEvent 发布危机结束事件
func (de *DoctorEvents) EndPatientCriticalEvent(duration float64) {
	de.Publish(DoctorEvent{Type: EventCriticalEnded, Duration: duration})
}

// PatientCriticalAdverted 发布危机化解事件
func (de *DoctorEvents) PatientCriticalAdverted() {
	de.Publish(DoctorEvent{Type: EventCriticalAdverted})
}

// InformPatientAboutToDie 发布病人剩余存活时间
func (de *DoctorEvents) InformPatientAboutToDie(seconds float64) {
	de.Publish(DoctorEvent{Type: EventPatientAboutToDie, Seconds: seconds})
}

// GameOver 发布病人死亡事件
func (de *DoctorEvents) GameOver(duration float64) {
	de.Publish(DoctorEvent{Type: EventGameOver, Duration: duration})
}

// PatientNeedsStitches 发布缝合请求
func (de *DoctorEvents) PatientNeedsStitches(duration float64) {
	de.Publish(DoctorEvent{Type: EventNeedsStitches, Duration: duration})
}

// PatientNeedsCutOpen 发布切开请求
func (de *DoctorEvents) PatientNeedsCutOpen(duration float64) {
	de.Publish(DoctorEvent{Type: EventNeedsCutOpen, Duration: duration})
}

// PatientNeedsBloodSoak 发布吸血请求
func (de *DoctorEvents) PatientNeedsBloodSoak(duration float64) {
	de.Publish(DoctorEvent{Type: EventNeedsBloodSoak, Duration: duration})
}

// ToolPickedUpForSurgery 发布拿起外科工具事件
func (de *DoctorEvents) ToolPickedUpForSurgery(tool types.ToolType) {
	de.Publish(DoctorEvent{Type: EventToolPickedUpForSurgery, Tool: tool})
}

// ToolDroppedForSurgery 发布放下外科工具事件
func (de *DoctorEvents) ToolDroppedForSurgery(tool types.ToolType) {
	de.Publish(DoctorEvent{Type: EventToolDroppedForSurgery, Tool: tool})
}
