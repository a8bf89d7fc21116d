package game

// Clock 单调时间源（秒）
// 所有危机阶段的时间锚点都基于 Clock.Now()，便于测试注入
type Clock interface {
	Now() float64
}

// SimClock 由游戏主循环推进的模拟时钟
// 每帧调用 Advance(dt)，暂停时不推进即可冻结整个模拟
type SimClock struct {
	now float64
}

// NewSimClock 创建从 start 秒开始的模拟时钟
func NewSimClock(start float64) *SimClock {
	return &SimClock{now: start}
}

// Now 返回当前模拟时间
func (c *SimClock) Now() float64 {
	return c.now
}

// Advance 推进模拟时间，负值被忽略（时钟单调）
func (c *SimClock) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}
