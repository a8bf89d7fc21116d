package systems

import "errors"

// 工具路由错误
// 均为可恢复错误：调用方记录日志后继续游戏
var (
	// ErrUnmappedTool 工具类型没有对应的处理逻辑
	ErrUnmappedTool = errors.New("tool has no patient operation")
	// ErrDoctorNotFound 找不到发起操作的医生
	ErrDoctorNotFound = errors.New("doctor not found")
	// ErrDoctorBusy 医生已经在操控另一件外科工具
	ErrDoctorBusy = errors.New("doctor already controls a surgery tool")
	// ErrNoPropSpawner 未注入道具生成器
	ErrNoPropSpawner = errors.New("no prop spawner available")
	// ErrPatientMissing 病人实体缺少生命体征组件
	ErrPatientMissing = errors.New("patient vitals component missing")
)
