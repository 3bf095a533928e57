package game

import "time"

// RoomSize bounds the number of participants required to start a game.
type RoomSize struct {
	Min int
	Max int
}

// Config holds the game's fixed tuning constants. They are not
// runtime-configurable in the shipped client; the struct exists so tests
// can shorten durations and shrink rooms.
type Config struct {
	RoomSize           RoomSize
	DebateDuration     time.Duration
	VoteDuration       time.Duration
	ResultDelay        time.Duration
	EntryFee           int
	BaseReward         int
	WinBonus           int
	ParticipationBonus int
	JoinStagger        time.Duration
	StartingBalance    int
}

// DefaultConfig returns the shipped game constants.
func DefaultConfig() Config {
	return Config{
		RoomSize:           RoomSize{Min: 4, Max: 8},
		DebateDuration:     90 * time.Second,
		VoteDuration:       30 * time.Second,
		ResultDelay:        3 * time.Second,
		EntryFee:           10,
		BaseReward:         50,
		WinBonus:           20,
		ParticipationBonus: 5,
		JoinStagger:        600 * time.Millisecond,
		StartingBalance:    100,
	}
}
