package funzone

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rbxsim/rbxsim/internal/app/ledger"
	"github.com/rbxsim/rbxsim/internal/domain"
	"github.com/rbxsim/rbxsim/internal/infra/observability"
)

// ─── Fun-Zone Service ───────────────────────────────────────────────────────
// One service owns the activity gates, the spin history, the scratch card,
// and the quiz state. Every public method performs the lazy day-boundary
// check first, so the stored state is always current before it is read.

// Service is the fun-zone engine.
type Service struct {
	mu     sync.Mutex
	cfg    Config
	rng    domain.Rand
	now    func() time.Time
	coord  *ledger.Coordinator
	store  domain.StoragePort
	logger *zap.Logger
	wg     sync.WaitGroup

	gates       map[domain.ActivityKind]*Gate
	spinHistory []domain.SpinRecord
	scratch     *domain.ScratchCard
	quiz        domain.QuizStats
	session     *Session

	// lastDay tracks the ledger's daily-delta housekeeping, which shares
	// the same calendar-day definition as the gates but runs independently.
	lastDay time.Time
}

// NewService wires the fun-zone engine.
func NewService(cfg Config, coord *ledger.Coordinator, store domain.StoragePort, logger *zap.Logger, rng domain.Rand, now func() time.Time) *Service {
	return &Service{
		cfg:    cfg,
		rng:    rng,
		now:    now,
		coord:  coord,
		store:  store,
		logger: logger,
		gates: map[domain.ActivityKind]*Gate{
			domain.ActivitySpin:    NewGate(domain.ActivitySpin, cfg.Limits.Spins),
			domain.ActivityScratch: NewGate(domain.ActivityScratch, cfg.Limits.Scratches),
			domain.ActivityVideo:   NewGate(domain.ActivityVideo, cfg.Limits.Videos),
			domain.ActivityLogin:   NewGate(domain.ActivityLogin, cfg.Limits.Logins),
			domain.ActivityShare:   NewGate(domain.ActivityShare, cfg.Limits.Shares),
		},
	}
}

// RewardOutcome is the result of one mini-activity attempt.
type RewardOutcome struct {
	OK        bool                    `json:"ok"`
	Remaining int                     `json:"remaining"`
	Value     int64                   `json:"value,omitempty"`
	Balance   domain.BalanceRecord    `json:"balance,omitempty"`
	Entry     domain.TransactionEntry `json:"entry,omitempty"`
}

// checkDayLocked runs the day-boundary housekeeping: every gate resets
// lazily, a stale scratch card is discarded, and the ledger's daily delta is
// snapped once per calendar day. Caller holds mu.
func (s *Service) checkDayLocked(ctx context.Context, now time.Time) {
	for kind, g := range s.gates {
		if g.CheckAndResetIfNewDay(now) && kind == domain.ActivityScratch {
			s.scratch = nil
		}
	}
	if !s.lastDay.IsZero() && !domain.SameDay(s.lastDay, now) {
		s.coord.ResetDailyDelta(ctx)
	}
	s.lastDay = now
}

// ─── Spin Wheel ─────────────────────────────────────────────────────────────

// Spin consumes one spin allowance and grants a weighted wheel reward.
func (s *Service) Spin(ctx context.Context) (RewardOutcome, error) {
	s.mu.Lock()
	now := s.now()
	s.checkDayLocked(ctx, now)

	res := s.gates[domain.ActivitySpin].Consume(now)
	if !res.OK {
		s.mu.Unlock()
		return RewardOutcome{OK: false, Remaining: res.Remaining}, nil
	}

	value := WheelPick(s.cfg.Wheel, s.rng)
	s.spinHistory = append([]domain.SpinRecord{{Value: value, Timestamp: now}}, s.spinHistory...)
	if len(s.spinHistory) > s.cfg.SpinHistoryCap {
		s.spinHistory = s.spinHistory[:s.cfg.SpinHistoryCap]
	}
	rec := s.recordLocked()
	s.mu.Unlock()

	out, err := s.coord.GrantReward(ctx, value, domain.SourceSpin, fmt.Sprintf("Spin Wheel: +%d RBX", value))
	if err != nil {
		return RewardOutcome{}, err
	}
	s.persistAsync(ctx, rec)
	return RewardOutcome{OK: true, Remaining: res.Remaining, Value: value, Balance: out.NewBalance, Entry: out.Entry}, nil
}

// SpinHistory returns a copy of the newest-first spin history.
func (s *Service) SpinHistory() []domain.SpinRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SpinRecord, len(s.spinHistory))
	copy(out, s.spinHistory)
	return out
}

// ─── Scratch Card ───────────────────────────────────────────────────────────

// NewScratchCard consumes one scratch allowance and creates an unrevealed
// card. An existing unrevealed card is returned as-is without consuming a
// slot — at most one live instance exists.
func (s *Service) NewScratchCard(ctx context.Context) (RewardOutcome, *domain.ScratchCard, error) {
	s.mu.Lock()
	now := s.now()
	s.checkDayLocked(ctx, now)

	if s.scratch != nil && !s.scratch.Revealed {
		card := *s.scratch
		remaining := s.gates[domain.ActivityScratch].Remaining(now)
		s.mu.Unlock()
		return RewardOutcome{OK: true, Remaining: remaining}, &card, nil
	}

	res := s.gates[domain.ActivityScratch].Consume(now)
	if !res.OK {
		s.mu.Unlock()
		return RewardOutcome{OK: false, Remaining: 0}, nil, nil
	}

	s.scratch = &domain.ScratchCard{
		Value:     ScratchValue(s.cfg.Scratch, s.rng),
		CreatedAt: now,
	}
	card := *s.scratch
	rec := s.recordLocked()
	s.mu.Unlock()

	s.persistAsync(ctx, rec)
	return RewardOutcome{OK: true, Remaining: res.Remaining}, &card, nil
}

// RevealScratch flips the live card to revealed and grants its value.
// The card mutates exactly once; a second reveal is an error.
func (s *Service) RevealScratch(ctx context.Context) (RewardOutcome, error) {
	s.mu.Lock()
	now := s.now()
	s.checkDayLocked(ctx, now)

	if s.scratch == nil {
		s.mu.Unlock()
		return RewardOutcome{}, domain.ErrNoScratchCard
	}
	if s.scratch.Revealed {
		s.mu.Unlock()
		return RewardOutcome{}, domain.ErrAlreadyRevealed
	}

	s.scratch.Revealed = true
	value := s.scratch.Value
	remaining := s.gates[domain.ActivityScratch].Remaining(now)
	rec := s.recordLocked()
	s.mu.Unlock()

	out, err := s.coord.GrantReward(ctx, value, domain.SourceScratch, fmt.Sprintf("Scratch Card: +%d RBX", value))
	if err != nil {
		return RewardOutcome{}, err
	}
	s.persistAsync(ctx, rec)
	return RewardOutcome{OK: true, Remaining: remaining, Value: value, Balance: out.NewBalance, Entry: out.Entry}, nil
}

// ─── Fixed-Range Activities ─────────────────────────────────────────────────

// CheckIn claims the daily login reward.
func (s *Service) CheckIn(ctx context.Context) (RewardOutcome, error) {
	return s.fixedActivity(ctx, domain.ActivityLogin, domain.SourceDailyLogin,
		func() int64 { return s.cfg.CheckInReward }, "Daily Check-in: +%d RBX")
}

// WatchVideo grants a uniform reward in the configured video range.
func (s *Service) WatchVideo(ctx context.Context) (RewardOutcome, error) {
	return s.fixedActivity(ctx, domain.ActivityVideo, domain.SourceWatchVideo,
		func() int64 { return RangeReward(s.cfg.VideoMin, s.cfg.VideoMax, s.rng) }, "Watch Video: +%d RBX")
}

// Share grants a uniform reward in the configured share range.
func (s *Service) Share(ctx context.Context) (RewardOutcome, error) {
	return s.fixedActivity(ctx, domain.ActivityShare, domain.SourceShare,
		func() int64 { return RangeReward(s.cfg.ShareMin, s.cfg.ShareMax, s.rng) }, "Share Reward: +%d RBX")
}

func (s *Service) fixedActivity(ctx context.Context, activity domain.ActivityKind, source domain.RewardSource, draw func() int64, descFormat string) (RewardOutcome, error) {
	s.mu.Lock()
	now := s.now()
	s.checkDayLocked(ctx, now)

	res := s.gates[activity].Consume(now)
	if !res.OK {
		s.mu.Unlock()
		return RewardOutcome{OK: false, Remaining: 0}, nil
	}
	value := draw()
	rec := s.recordLocked()
	s.mu.Unlock()

	out, err := s.coord.GrantReward(ctx, value, source, fmt.Sprintf(descFormat, value))
	if err != nil {
		return RewardOutcome{}, err
	}
	s.persistAsync(ctx, rec)
	return RewardOutcome{OK: true, Remaining: res.Remaining, Value: value, Balance: out.NewBalance, Entry: out.Entry}, nil
}

// ─── Quiz ───────────────────────────────────────────────────────────────────

// QuizQuestion is the client-facing view of the current question.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Number  int      `json:"number"`
	Total   int      `json:"total"`
}

// StartQuiz begins a fresh session, replacing any in-progress one.
func (s *Service) StartQuiz() QuizQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = NewSession(s.cfg.QuestionPool, s.cfg.QuizQuestions, s.rng)
	return s.currentQuestionLocked()
}

// AnswerQuiz submits an answer for the current question. When the last
// question is answered, the stats record is finalized and persisted.
func (s *Service) AnswerQuiz(ctx context.Context, choice int) (AnswerResult, QuizQuestion, error) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return AnswerResult{}, QuizQuestion{}, domain.ErrNoQuizSession
	}

	result, err := s.session.Answer(choice)
	if err != nil {
		s.mu.Unlock()
		return AnswerResult{}, QuizQuestion{}, err
	}

	var next QuizQuestion
	var rec domain.FunZoneRecord
	if result.Done {
		s.quiz = finalizeStats(s.quiz, result.Score, s.now())
		s.session = nil
		rec = s.recordLocked()
		s.mu.Unlock()
		s.persistAsync(ctx, rec)
		return result, next, nil
	}

	next = s.currentQuestionLocked()
	s.mu.Unlock()
	return result, next, nil
}

// QuizStats returns the current stats record.
func (s *Service) QuizStats() domain.QuizStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz
}

func (s *Service) currentQuestionLocked() QuizQuestion {
	q := s.session.Current()
	if q == nil {
		return QuizQuestion{}
	}
	n, total := s.session.Progress()
	return QuizQuestion{Prompt: q.Prompt, Options: q.Options, Number: n, Total: total}
}

// ─── Status, Persistence & Reset ────────────────────────────────────────────

// Status returns remaining allowances per activity after the lazy reset.
func (s *Service) Status(ctx context.Context) map[domain.ActivityKind]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkDayLocked(ctx, s.now())

	out := make(map[domain.ActivityKind]int, len(s.gates))
	for kind, g := range s.gates {
		out[kind] = g.Remaining(s.now())
	}
	return out
}

// Record assembles the persistable fun-zone blob.
func (s *Service) Record() domain.FunZoneRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked()
}

func (s *Service) recordLocked() domain.FunZoneRecord {
	history := make([]domain.SpinRecord, len(s.spinHistory))
	copy(history, s.spinHistory)

	var card *domain.ScratchCard
	if s.scratch != nil {
		c := *s.scratch
		card = &c
	}

	spin := s.gates[domain.ActivitySpin].Record()
	scratch := s.gates[domain.ActivityScratch].Record()
	video := s.gates[domain.ActivityVideo].Record()
	login := s.gates[domain.ActivityLogin].Record()
	share := s.gates[domain.ActivityShare].Record()

	return domain.FunZoneRecord{
		SpinHistory:             history,
		LastSpinDate:            spin.LastDate,
		DailySpinsRemaining:     spin.Remaining,
		ScratchCard:             card,
		LastScratchDate:         scratch.LastDate,
		DailyScratchesRemaining: scratch.Remaining,
		Quiz:                    s.quiz,
		DailyLoginRemaining:     login.Remaining,
		LastLoginDate:           login.LastDate,
		DailyVideosRemaining:    video.Remaining,
		LastVideoDate:           video.LastDate,
		DailyShareRemaining:     share.Remaining,
		LastShareDate:           share.LastDate,
	}
}

// Restore loads the fun-zone record from the storage port. A missing key
// yields defaults; a corrupt blob is logged and replaced with defaults.
func (s *Service) Restore(ctx context.Context) error {
	raw, err := s.store.Get(ctx, domain.KeyFunZone)
	if err != nil {
		return fmt.Errorf("load fun-zone record: %w", err)
	}
	if raw == nil {
		return nil
	}

	var rec domain.FunZoneRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("corrupt fun-zone record, using defaults", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.spinHistory = rec.SpinHistory
	if len(s.spinHistory) > s.cfg.SpinHistoryCap {
		s.spinHistory = s.spinHistory[:s.cfg.SpinHistoryCap]
	}
	s.scratch = rec.ScratchCard
	s.quiz = rec.Quiz
	s.gates[domain.ActivitySpin].Restore(domain.GateRecord{Remaining: rec.DailySpinsRemaining, LastDate: rec.LastSpinDate})
	s.gates[domain.ActivityScratch].Restore(domain.GateRecord{Remaining: rec.DailyScratchesRemaining, LastDate: rec.LastScratchDate})
	s.gates[domain.ActivityVideo].Restore(domain.GateRecord{Remaining: rec.DailyVideosRemaining, LastDate: rec.LastVideoDate})
	s.gates[domain.ActivityLogin].Restore(domain.GateRecord{Remaining: rec.DailyLoginRemaining, LastDate: rec.LastLoginDate})
	s.gates[domain.ActivityShare].Restore(domain.GateRecord{Remaining: rec.DailyShareRemaining, LastDate: rec.LastShareDate})
	return nil
}

// Save persists the fun-zone record synchronously. Used at shutdown.
func (s *Service) Save(ctx context.Context) error {
	return s.persist(ctx, s.Record())
}

// Reset restores the in-memory fun-zone state to defaults without touching
// storage; clear-all removes the persisted keys separately.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spinHistory = nil
	s.scratch = nil
	s.quiz = domain.QuizStats{}
	s.session = nil
	s.lastDay = time.Time{}
	for _, g := range s.gates {
		g.Restore(domain.GateRecord{Remaining: g.max})
	}
}

// Wait blocks until in-flight persistence requests finish.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) persistAsync(ctx context.Context, rec domain.FunZoneRecord) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persist(context.WithoutCancel(ctx), rec); err != nil {
			s.logger.Warn("fun-zone persistence failed; in-memory state unaffected", zap.Error(err))
		}
	}()
}

func (s *Service) persist(ctx context.Context, rec domain.FunZoneRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode fun-zone record: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyFunZone, raw); err != nil {
		observability.PersistenceFailures.WithLabelValues(domain.KeyFunZone).Inc()
		return fmt.Errorf("save fun-zone record: %w", err)
	}
	return nil
}
