package combat

// Rand 战斗使用的随机源，*math/rand.Rand 满足该接口
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// roll 返回 [lo, hi] 闭区间内的随机整数
func roll(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// chance 以概率 p 返回 true
func chance(r Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}

// scale 按倍率缩放伤害，向下取整
func scale(v int, mult float64) int {
	return int(float64(v) * mult)
}
