package combat

import "time"

// 技能名
const (
	AbilityPush = "push"
	AbilityShot = "shot"
)

// ReadyCooldown 冷却结束时记录本次触发时间并返回 true；冷却中返回 false 且不修改记录
func ReadyCooldown(cooldowns *map[string]time.Time, ability string, cooldown time.Duration, now time.Time) bool {
	if cooldowns == nil {
		return false
	}
	if *cooldowns == nil {
		*cooldowns = make(map[string]time.Time)
	}
	if cooldown > 0 {
		if last, ok := (*cooldowns)[ability]; ok && now.Sub(last) < cooldown {
			return false
		}
	}
	(*cooldowns)[ability] = now
	return true
}

// RemainingCooldown 剩余冷却时间
func RemainingCooldown(cooldowns map[string]time.Time, ability string, cooldown time.Duration, now time.Time) time.Duration {
	last, ok := cooldowns[ability]
	if !ok {
		return 0
	}
	if left := cooldown - now.Sub(last); left > 0 {
		return left
	}
	return 0
}
