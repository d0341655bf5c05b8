package activity

// XP awards and the level curve. Every 1000 XP is one level; a fresh user
// with 0 XP is level 1.
const (
	MessageXP        = 10
	VoiceXPPerMinute = 5
	XPPerLevel       = 1000
)

// LevelOf derives the level for a given XP total. Total over all xp >= 0.
func LevelOf(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPToNextLevel returns how much XP is missing until the next level.
func XPToNextLevel(level, xp int) int {
	return level*XPPerLevel - xp
}

// RankNameOf maps a level to its cosmetic rank band. Thresholds are checked
// highest-first so exactly one band applies.
func RankNameOf(level int) string {
	switch {
	case level >= 50:
		return "👑 Legendary"
	case level >= 40:
		return "💎 Diamond"
	case level >= 30:
		return "🏆 Platinum"
	case level >= 20:
		return "⭐ Gold"
	case level >= 10:
		return "🥈 Silver"
	case level >= 5:
		return "🥉 Bronze"
	default:
		return "🆕 Newcomer"
	}
}
