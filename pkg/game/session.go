// Package game drives the round-progression state machine: room lifecycle,
// debate/vote/result phases, timer-driven advancement, vote tallying, and
// score accrual.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/consensuslabs/chronicle/pkg/participant"
	"github.com/consensuslabs/chronicle/pkg/score"
	"github.com/consensuslabs/chronicle/pkg/simulant"
	"github.com/consensuslabs/chronicle/pkg/storage"
	"github.com/consensuslabs/chronicle/pkg/story"
)

// Phase is the session's position in the round cycle.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseDebate Phase = "debate"
	PhaseVote   Phase = "vote"
	PhaseResult Phase = "result"
	PhaseEnded  Phase = "ended"
)

// Precondition violations. All are user-visible and leave state untouched.
var (
	ErrInsufficientBalance = errors.New("insufficient balance for entry fee")
	ErrRoomActive          = errors.New("a room is already active")
	ErrNoRoom              = errors.New("no active room")
	ErrNotEnoughPlayers    = errors.New("not enough participants to start")
	ErrWrongPhase          = errors.New("action not allowed in current phase")
	ErrEmptyCommentary     = errors.New("commentary is empty")
	ErrAlreadyVoted        = errors.New("vote already recorded")
	ErrInvalidBranch       = errors.New("vote must be A or B")
)

// Room is the container for one play session.
type Room struct {
	ID      uuid.UUID
	ThemeID string
	Host    uuid.UUID
}

// Deps carries the session's collaborators. Zero fields get production
// defaults.
type Deps struct {
	Store     storage.Storage
	Logger    *slog.Logger
	Scheduler Scheduler
	Rand      *rand.Rand
	Generator simulant.Generator
	Intent    IntentExtractor
	// Filter, when set, rewrites commentary text before it enters the
	// feed.
	Filter func(string) string
}

// Session owns one room's full lifecycle. All state is guarded by a single
// mutex; timer and simulated-participant callbacks re-acquire it and check
// the lifecycle epoch, so a callback firing after its phase has passed is
// a harmless no-op.
type Session struct {
	mu  sync.Mutex
	cfg Config

	store  storage.Storage
	log    *slog.Logger
	sched  Scheduler
	rng    *rand.Rand
	gen    simulant.Generator
	intent IntentExtractor
	filter func(string) string

	profile *score.Profile

	room     *Room
	theme    *story.Theme
	registry *participant.Registry
	human    *participant.Participant

	phase      Phase
	round      int
	roundDef   *story.RoundDef
	path       []story.Branch
	votes      map[uuid.UUID]story.Branch
	board      *score.Board
	transcript []TranscriptEntry
	feed       []Message
	lastResult *RoundResult
	lastReward int

	deadline    time.Time
	epoch       int
	cancelPhase CancelFunc
	pending     []CancelFunc
	settled     bool
}

// NewSession builds a session for the given profile. Any nil Deps fields
// fall back to production defaults.
func NewSession(cfg Config, profile *score.Profile, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = NewTimerScheduler()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Generator == nil {
		deps.Generator = simulant.NewRandomGenerator(deps.Rand)
	}
	if deps.Intent == nil {
		deps.Intent = TokenIntentExtractor{}
	}
	return &Session{
		cfg:     cfg,
		store:   deps.Store,
		log:     deps.Logger,
		sched:   deps.Scheduler,
		rng:     deps.Rand,
		gen:     deps.Generator,
		intent:  deps.Intent,
		filter:  deps.Filter,
		profile: profile,
		phase:   PhaseIdle,
	}
}

// CreateRoom debits the entry fee and opens a room for the theme, seeding
// the registry with the human player and scheduling a staggered batch of
// simulated joiners. The fee debit persists even if the room is later
// abandoned before starting.
func (s *Session) CreateRoom(ctx context.Context, themeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room != nil {
		return ErrRoomActive
	}
	theme, err := s.store.GetTheme(ctx, themeID)
	if err != nil {
		return fmt.Errorf("failed to load theme: %w", err)
	}
	if s.profile.Balance < s.cfg.EntryFee {
		return fmt.Errorf("%w: need %d GLT", ErrInsufficientBalance, s.cfg.EntryFee)
	}

	// Debit atomically with room creation: roll back if the save fails.
	s.profile.Balance -= s.cfg.EntryFee
	if err := s.store.SaveProfile(ctx, s.profile); err != nil {
		s.profile.Balance += s.cfg.EntryFee
		return fmt.Errorf("failed to debit entry fee: %w", err)
	}

	epoch := s.bumpEpochLocked()

	s.theme = theme
	s.room = &Room{ID: uuid.New(), ThemeID: themeID, Host: s.profile.ID}
	s.human = &participant.Participant{
		ID:     s.profile.ID,
		Name:   s.profile.Name,
		Avatar: s.profile.Avatar,
	}
	s.registry = participant.NewRegistry()
	s.registry.Add(s.human)

	s.phase = PhaseIdle
	s.round = 0
	s.roundDef = nil
	s.path = nil
	s.votes = nil
	s.board = nil
	s.transcript = nil
	s.feed = nil
	s.lastResult = nil
	s.lastReward = 0
	s.settled = false

	s.systemf("Room created. -%d GLT entry fee.", s.cfg.EntryFee)

	batch := participant.Roster(3+s.rng.Intn(2), s.rng)
	for i, p := range batch {
		p := p
		s.scheduleLocked(time.Duration(i+1)*s.cfg.JoinStagger, epoch, func() {
			s.joinLocked(p)
		})
	}

	s.log.Info("Room created", "room", s.room.ID, "theme", themeID)
	return nil
}

// joinLocked admits a simulated participant while the room is still
// waiting. Late arrivals after game start are dropped by the epoch guard;
// this additionally enforces the idle phase and the room cap.
func (s *Session) joinLocked(p *participant.Participant) {
	if s.phase != PhaseIdle || s.registry == nil {
		return
	}
	if s.registry.Len() >= s.cfg.RoomSize.Max {
		return
	}
	s.registry.Add(p)
	s.systemf("%s %s joined", p.Avatar, p.Name)
}

// StartGame gates on room occupancy and begins round 1's debate phase.
func (s *Session) StartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room == nil {
		return ErrNoRoom
	}
	if s.phase != PhaseIdle {
		return ErrWrongPhase
	}
	n := s.registry.Len()
	if n < s.cfg.RoomSize.Min || n > s.cfg.RoomSize.Max {
		return fmt.Errorf("%w: have %d, need %d-%d", ErrNotEnoughPlayers, n, s.cfg.RoomSize.Min, s.cfg.RoomSize.Max)
	}

	s.board = score.NewBoard()
	for _, p := range s.registry.Members() {
		s.board.Enroll(p.ID)
	}
	s.transcript = append(s.transcript, TranscriptEntry{Kind: TranscriptOpening, Text: s.theme.Opening})
	s.systemf("%s begins!", s.theme.Name)

	s.beginDebateLocked(1)
	return nil
}

// beginDebateLocked enters round r's debate phase. Missing round content
// routes to the ended state instead of failing.
func (s *Session) beginDebateLocked(r int) {
	epoch := s.bumpEpochLocked()

	rd, ctx, err := s.theme.Round(r, s.path)
	if err != nil {
		s.log.Warn("Story exhausted", "round", r, "theme", s.theme.ID, "error", err)
		s.endLocked()
		return
	}

	s.round = r
	s.roundDef = rd
	s.phase = PhaseDebate
	s.votes = make(map[uuid.UUID]story.Branch)
	s.transcript = append(s.transcript, TranscriptEntry{Kind: TranscriptContext, Round: r, Text: ctx})
	s.systemf("Round %d/%d: debate", r, s.theme.TotalRounds())

	for i, p := range s.registry.Simulated() {
		p := p
		s.scheduleLocked(s.phaseOffsetLocked(i, s.cfg.DebateDuration), epoch, func() {
			s.simCommentaryLocked(p)
		})
	}
	s.armPhaseTimerLocked(s.cfg.DebateDuration, epoch, s.beginVoteLocked)
}

// simCommentaryLocked emits one vote-leaning commentary line for a
// simulated participant. The leaning is display-only; it is not a vote.
func (s *Session) simCommentaryLocked(p *participant.Participant) {
	if s.phase != PhaseDebate {
		return
	}
	take := s.gen.Take(p.Style)
	s.chatLocked(p, take.Leaning, take.Text)
}

// beginVoteLocked enters the vote phase and schedules one vote per
// simulated participant.
func (s *Session) beginVoteLocked() {
	epoch := s.bumpEpochLocked()

	s.phase = PhaseVote
	s.votes = make(map[uuid.UUID]story.Branch)
	s.systemf("Voting open: choose A or B")

	for i, p := range s.registry.Simulated() {
		p := p
		s.scheduleLocked(s.phaseOffsetLocked(i, s.cfg.VoteDuration), epoch, func() {
			s.simVoteLocked(p)
		})
	}
	s.armPhaseTimerLocked(s.cfg.VoteDuration, epoch, s.resolveRoundLocked)
}

// simVoteLocked records a simulated participant's single vote.
func (s *Session) simVoteLocked(p *participant.Participant) {
	if s.phase != PhaseVote {
		return
	}
	if _, ok := s.votes[p.ID]; ok {
		return
	}
	take := s.gen.Take(p.Style)
	s.votes[p.ID] = take.Leaning
}

// SubmitCommentary records a line of debate commentary from the human
// player, crediting participation. Empty input or a call outside the
// debate phase is rejected without mutating state.
func (s *Session) SubmitCommentary(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseDebate {
		return ErrWrongPhase
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyCommentary
	}
	if s.filter != nil {
		trimmed = s.filter(trimmed)
	}
	s.board.AddParticipation(s.human.ID, s.cfg.ParticipationBonus)
	s.chatLocked(s.human, s.intent.Extract(trimmed), trimmed)
	return nil
}

// SubmitVote records the human player's vote. The first recorded vote is
// final; later calls are rejected.
func (s *Session) SubmitVote(b story.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !b.Valid() {
		return ErrInvalidBranch
	}
	if s.phase != PhaseVote {
		return ErrWrongPhase
	}
	if _, ok := s.votes[s.human.ID]; ok {
		return ErrAlreadyVoted
	}
	s.votes[s.human.ID] = b
	s.systemf("Vote recorded: %s", b)
	return nil
}

// resolveRoundLocked tallies votes, applies the tie-break, credits
// influence, extends the path, and enters the result phase.
func (s *Session) resolveRoundLocked() {
	epoch := s.bumpEpochLocked()
	s.phase = PhaseResult

	countA, countB := s.tallyLocked()
	var winner story.Branch
	switch {
	case countA+countB == 0:
		// No votes at all: uniform random winner.
		winner = story.BranchA
		if s.rng.Intn(2) == 1 {
			winner = story.BranchB
		}
	case countB > countA:
		winner = story.BranchB
	default:
		// Exact ties resolve in favor of A.
		winner = story.BranchA
	}

	for id, v := range s.votes {
		if v == winner {
			s.board.AddInfluence(id, s.cfg.WinBonus)
		}
	}

	// Outcome resolution keys off the path before this round's branch is
	// appended.
	outcome, err := s.theme.Outcome(s.round, winner, s.path)
	if err != nil {
		s.log.Warn("No outcome line", "round", s.round, "error", err)
	}
	s.path = append(s.path, winner)

	opt := s.roundDef.Option(winner)
	s.transcript = append(s.transcript, TranscriptEntry{
		Kind:   TranscriptChoice,
		Round:  s.round,
		Winner: winner,
		Text:   fmt.Sprintf("[%s] %s", opt.Tag, opt.Text),
	})
	if outcome != "" {
		s.transcript = append(s.transcript, TranscriptEntry{
			Kind:   TranscriptOutcome,
			Round:  s.round,
			Winner: winner,
			Text:   outcome,
		})
	}

	win, lose := countA, countB
	if winner == story.BranchB {
		win, lose = countB, countA
	}
	s.lastResult = &RoundResult{Round: s.round, Winner: winner, CountA: countA, CountB: countB}
	s.systemf("%s wins the round (%d vs %d)", winner, win, lose)

	if s.round >= s.theme.TotalRounds() {
		s.armPhaseTimerLocked(s.cfg.ResultDelay, epoch, s.endLocked)
		return
	}
	next := s.round + 1
	s.armPhaseTimerLocked(s.cfg.ResultDelay, epoch, func() {
		s.beginDebateLocked(next)
	})
}

// EndGame terminates the session early from any active phase, settling
// with the path accumulated so far.
func (s *Session) EndGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room == nil {
		return ErrNoRoom
	}
	if s.phase == PhaseIdle {
		return ErrWrongPhase
	}
	s.endLocked()
	return nil
}

// endLocked is the single entry into the terminal state. Settlement runs
// exactly once even if a manual end races a timer-driven end.
func (s *Session) endLocked() {
	if s.phase == PhaseEnded {
		return
	}
	s.bumpEpochLocked()
	s.phase = PhaseEnded
	s.deadline = time.Time{}

	if s.settled || s.board == nil {
		return
	}
	s.settled = true

	rec := s.board.Get(s.human.ID)
	engine := score.NewEngine(s.store, s.cfg.BaseReward, s.cfg.EntryFee)
	reward, err := engine.Settle(context.Background(), s.profile, rec, s.theme.ID, s.theme.Name)
	if err != nil {
		// Best-effort persistence: the session still ends cleanly.
		s.log.Error("Failed to settle rewards", "error", err)
	}
	s.lastReward = reward
	s.systemf("Chronicle complete. +%d GLT", reward)
}

// Reset cancels timers and returns the session to an uninitialized idle
// state, discarding the room, registry, and transcript. The player profile
// persists, including any entry fee already paid.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bumpEpochLocked()
	s.room = nil
	s.theme = nil
	s.registry = nil
	s.human = nil
	s.phase = PhaseIdle
	s.round = 0
	s.roundDef = nil
	s.path = nil
	s.votes = nil
	s.board = nil
	s.transcript = nil
	s.feed = nil
	s.lastResult = nil
	s.lastReward = 0
	s.deadline = time.Time{}
	s.settled = false
}

// Profile returns a copy of the player profile.
func (s *Session) Profile() score.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.profile
}

// bumpEpochLocked advances the lifecycle epoch, invalidating every
// outstanding callback, and cancels whatever can still be canceled.
func (s *Session) bumpEpochLocked() int {
	s.epoch++
	if s.cancelPhase != nil {
		s.cancelPhase()
		s.cancelPhase = nil
	}
	for _, cancel := range s.pending {
		cancel()
	}
	s.pending = nil
	return s.epoch
}

// scheduleLocked arms a one-shot callback bound to an epoch. The callback
// re-acquires the session lock and is dropped if the lifecycle has moved
// on by the time it fires.
func (s *Session) scheduleLocked(d time.Duration, epoch int, fn func()) {
	cancel := s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch {
			return
		}
		fn()
	})
	s.pending = append(s.pending, cancel)
}

// armPhaseTimerLocked arms the single phase-advancement timer. Any
// previously running phase timer was already canceled by the epoch bump
// that preceded this call.
func (s *Session) armPhaseTimerLocked(d time.Duration, epoch int, fn func()) {
	s.deadline = time.Now().Add(d)
	s.cancelPhase = s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch {
			return
		}
		fn()
	})
}

// phaseOffsetLocked spreads simulated-participant actions across a phase:
// a per-member stagger plus jitter, clamped inside the phase duration.
func (s *Session) phaseOffsetLocked(i int, phase time.Duration) time.Duration {
	step := phase / 10
	if step <= 0 {
		step = time.Millisecond
	}
	offset := time.Duration(i+1)*step + time.Duration(s.rng.Int63n(int64(step)))
	if limit := phase - step/2; offset > limit && limit > 0 {
		offset = limit
	}
	return offset
}

// tallyLocked recomputes the per-option counts from the recorded votes,
// so the live tally is correct at any instant.
func (s *Session) tallyLocked() (countA, countB int) {
	for _, v := range s.votes {
		switch v {
		case story.BranchA:
			countA++
		case story.BranchB:
			countB++
		}
	}
	return countA, countB
}

func (s *Session) systemf(format string, args ...any) {
	s.appendFeedLocked(Message{Kind: MessageSystem, Text: fmt.Sprintf(format, args...)})
}

func (s *Session) chatLocked(p *participant.Participant, leaning story.Branch, text string) {
	s.appendFeedLocked(Message{Kind: MessageChat, From: p, Leaning: leaning, Text: text})
}

func (s *Session) appendFeedLocked(m Message) {
	s.feed = append(s.feed, m)
	if len(s.feed) > feedLimit {
		s.feed = s.feed[len(s.feed)-feedLimit:]
	}
}
