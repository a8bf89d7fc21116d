package components

// CriticalState 病人心脏危机阶段
type CriticalState int

const (
	// CriticalStateNormal 正常心率，等待危机触发
	CriticalStateNormal CriticalState = iota
	// CriticalStateSpeedingUp 心率从正常值线性升至危急值（d/3）
	CriticalStateSpeedingUp
	// CriticalStateAttacking 心脏病发作，维持危急心率（d/6，教学模式下无限期）
	CriticalStateAttacking
	// CriticalStateSpeedingUpToDie 心率从危急值线性升至濒死值（d/3）
	CriticalStateSpeedingUpToDie
	// CriticalStateAboutToDie 濒死，持续到危机周期结束
	CriticalStateAboutToDie
	// CriticalStateFinishing 危机解除，心率回落到正常值
	CriticalStateFinishing
	// CriticalStateDead 死亡（终态）
	CriticalStateDead
)

// String 返回危机阶段的字符串表示
func (s CriticalState) String() string {
	switch s {
	case CriticalStateNormal:
		return "NORMAL"
	case CriticalStateSpeedingUp:
		return "SPEEDING_UP"
	case CriticalStateAttacking:
		return "ATTACKING"
	case CriticalStateSpeedingUpToDie:
		return "SPEEDING_UP_TO_DIE"
	case CriticalStateAboutToDie:
		return "ABOUT_TO_DIE"
	case CriticalStateFinishing:
		return "FINISHING"
	case CriticalStateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// InCrisis 是否处于危险分支（可被“危机结束”取消的阶段）
func (s CriticalState) InCrisis() bool {
	switch s {
	case CriticalStateSpeedingUp, CriticalStateAttacking,
		CriticalStateSpeedingUpToDie, CriticalStateAboutToDie:
		return true
	}
	return false
}

// ShouldSoundMonitorBeep 监护仪是否在每次心跳时发出提示音
func (s CriticalState) ShouldSoundMonitorBeep() bool {
	return s.InCrisis() || s == CriticalStateFinishing
}

// VitalStateComponent 病人生命体征组件
// 每个病人实体一个实例，只由 CriticalEventSystem、HeartRateSystem 和
// PatientOperationSystem 修改
//
// 时间单位说明：所有时间戳均为模拟时钟的秒数（game.Clock.Now()）
type VitalStateComponent struct {
	// CurrentBPM 当前心率，始终 >= 0
	CurrentBPM float64

	// CriticalState 当前危机阶段
	CriticalState CriticalState

	// CycleStartTime 本次危机周期开始时间
	CycleStartTime float64
	// StateStartTime 当前阶段开始时间
	StateStartTime float64
	// StateEndTime 当前阶段结束时间（教学模式下可能为 +Inf）
	StateEndTime float64

	// CycleDuration 危机总时长（由触发方提供），用于推导各阶段时长
	CycleDuration float64

	// RevertBPM 危机解除瞬间的心率快照，恢复阶段从此值插值回正常心率
	RevertBPM float64

	// DefibrillationsRemaining 解除危机还需要的除颤次数
	DefibrillationsRemaining int

	// AdvertedNotified 本次危机是否已经发出过“危机解除”通知
	// 保证计数归零后多余的除颤不会重复通知
	AdvertedNotified bool

	// LastBeatTime 上一次心跳时间
	LastBeatTime float64
	// NextBeatTime 下一次心跳时间，间隔 = 60 / CurrentBPM
	NextBeatTime float64
}
