package combat

// Log 有界战斗日志，超出容量时丢弃最旧的记录
type Log struct {
	lines    []string
	capacity int
}

// NewLog 创建指定容量的战斗日志
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log{lines: make([]string, 0, capacity), capacity: capacity}
}

// Add 追加一行日志
func (l *Log) Add(line string) {
	if len(l.lines) == l.capacity {
		copy(l.lines, l.lines[1:])
		l.lines = l.lines[:len(l.lines)-1]
	}
	l.lines = append(l.lines, line)
}

// Lines 返回日志副本，按时间顺序
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Last 返回最近 n 行，n <= 0 时返回空
func (l *Log) Last(n int) []string {
	if n <= 0 {
		return []string{}
	}
	if n >= len(l.lines) {
		return l.Lines()
	}
	out := make([]string, n)
	copy(out, l.lines[len(l.lines)-n:])
	return out
}

// Len 当前行数
func (l *Log) Len() int {
	return len(l.lines)
}
