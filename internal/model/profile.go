package model

// Profile holds the free-text status an account shares with its partner.
type Profile struct {
	Mood string `json:"mood"`
	Want string `json:"want"`
}

// RewardConfig is the streak goal of a pair and what unlocks at the goal.
type RewardConfig struct {
	DaysRequired int    `json:"days_required"`
	Gift         string `json:"gift"`
}
