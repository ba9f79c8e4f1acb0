package funzone

// ─── Fun-Zone Configuration ─────────────────────────────────────────────────

// Limits are the per-activity daily maxima.
type Limits struct {
	Spins     int `toml:"spins" json:"spins"`
	Scratches int `toml:"scratches" json:"scratches"`
	Videos    int `toml:"videos" json:"videos"`
	Logins    int `toml:"logins" json:"logins"`
	Shares    int `toml:"shares" json:"shares"`
}

// Config holds every reward policy knob.
type Config struct {
	Limits Limits `toml:"limits"`

	// Wheel is the single canonical spin configuration; every call site
	// uses the same segments.
	Wheel []WheelSegment `toml:"wheel"`

	Scratch ScratchTiers `toml:"scratch"`

	CheckInReward int64 `toml:"checkin_reward"`
	VideoMin      int64 `toml:"video_min"`
	VideoMax      int64 `toml:"video_max"`
	ShareMin      int64 `toml:"share_min"`
	ShareMax      int64 `toml:"share_max"`

	QuizQuestions  int        `toml:"quiz_questions"`
	QuestionPool   []Question `toml:"questions"`
	SpinHistoryCap int        `toml:"spin_history_cap"`
}

// DefaultConfig returns the canonical reward policy.
func DefaultConfig() Config {
	return Config{
		Limits: Limits{
			Spins:     3,
			Scratches: 2,
			Videos:    5,
			Logins:    1,
			Shares:    1,
		},
		Wheel: []WheelSegment{
			{Value: 25, Weight: 30},
			{Value: 50, Weight: 25},
			{Value: 75, Weight: 15},
			{Value: 100, Weight: 12},
			{Value: 150, Weight: 8},
			{Value: 200, Weight: 5},
			{Value: 300, Weight: 3},
			{Value: 500, Weight: 2},
		},
		Scratch: ScratchTiers{
			Min:       10,
			CommonMax: 100,
			Max:       500,
			RareProb:  0.2,
		},
		CheckInReward:  100,
		VideoMin:       10,
		VideoMax:       50,
		ShareMin:       20,
		ShareMax:       80,
		QuizQuestions:  10,
		QuestionPool:   defaultQuestionPool(),
		SpinHistoryCap: 50,
	}
}
