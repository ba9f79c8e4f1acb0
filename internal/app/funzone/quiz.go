package funzone

import (
	"time"

	"github.com/rbxsim/rbxsim/internal/domain"
)

// ─── Quiz ───────────────────────────────────────────────────────────────────
// A session draws N shuffled distinct questions from the pool; score grows
// by one per correct answer; the session ends after the last question, at
// which point gamesPlayed increments and highScore rises monotonically.
// Quiz play tracks stats only — it never credits the ledger.

// Question is one quiz question.
type Question struct {
	Prompt  string   `toml:"prompt" json:"prompt"`
	Options []string `toml:"options" json:"options"`
	Answer  int      `toml:"answer" json:"-"`
}

// Session is one in-progress quiz game. At most one live session exists.
type Session struct {
	questions []Question
	index     int
	score     int
	done      bool
}

// NewSession draws count distinct questions from a shuffled copy of pool.
func NewSession(pool []Question, count int, rng domain.Rand) *Session {
	shuffled := ShuffleQuestions(pool, rng)
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return &Session{questions: shuffled[:count]}
}

// Current returns the question awaiting an answer, or nil when finished.
func (s *Session) Current() *Question {
	if s.done || s.index >= len(s.questions) {
		return nil
	}
	q := s.questions[s.index]
	return &q
}

// Progress returns the 1-based question number and the total count.
func (s *Session) Progress() (int, int) {
	n := s.index + 1
	if n > len(s.questions) {
		n = len(s.questions)
	}
	return n, len(s.questions)
}

// Score returns the running score.
func (s *Session) Score() int { return s.score }

// Done reports whether the session has finished.
func (s *Session) Done() bool { return s.done }

// AnswerResult describes the outcome of one answer.
type AnswerResult struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
	Done    bool `json:"done"`
}

// Answer submits a choice for the current question and advances the session.
func (s *Session) Answer(choice int) (AnswerResult, error) {
	if s.done {
		return AnswerResult{}, domain.ErrQuizFinished
	}
	q := s.Current()
	if q == nil {
		return AnswerResult{}, domain.ErrQuizFinished
	}
	if choice < 0 || choice >= len(q.Options) {
		return AnswerResult{}, domain.ErrAnswerOutOfRange
	}

	correct := choice == q.Answer
	if correct {
		s.score++
	}
	s.index++
	if s.index >= len(s.questions) {
		s.done = true
	}
	return AnswerResult{Correct: correct, Score: s.score, Done: s.done}, nil
}

// finalizeStats folds a completed session into the stats record.
// HighScore only moves up; gamesPlayed increments regardless of score.
func finalizeStats(stats domain.QuizStats, score int, now time.Time) domain.QuizStats {
	stats.GamesPlayed++
	if score > stats.HighScore {
		stats.HighScore = score
	}
	stats.LastPlayedDate = now
	return stats
}

// defaultQuestionPool is the built-in question set, overridable via config.
func defaultQuestionPool() []Question {
	return []Question{
		{Prompt: "What does RBX stand for in this app?", Options: []string{"Robux", "A fictional simulator currency", "Rubles", "Rebates"}, Answer: 1},
		{Prompt: "How many spins does the wheel allow per day by default?", Options: []string{"1", "2", "3", "Unlimited"}, Answer: 2},
		{Prompt: "What happens when a debit exceeds your balance?", Options: []string{"Balance goes negative", "The app crashes", "Balance clamps to zero", "A loan is created"}, Answer: 2},
		{Prompt: "When do daily activity limits reset?", Options: []string{"Every hour", "At local midnight", "Every Monday", "Never"}, Answer: 1},
		{Prompt: "How many transaction entries does the history keep?", Options: []string{"50", "100", "500", "All of them"}, Answer: 1},
		{Prompt: "Which activity awards the rare high tier?", Options: []string{"Daily check-in", "Scratch card", "Share", "Quiz"}, Answer: 1},
		{Prompt: "Can RBX be exchanged for real money?", Options: []string{"Yes, via bank transfer", "Yes, via gift cards", "No, it is fictional", "Only on weekends"}, Answer: 2},
		{Prompt: "What is recorded alongside every transaction?", Options: []string{"GPS location", "Balance after the mutation", "Device model", "IP address"}, Answer: 1},
		{Prompt: "How many scratch cards can be live at once?", Options: []string{"One", "Two", "Five", "Unlimited"}, Answer: 0},
		{Prompt: "What does the export operation do?", Options: []string{"Deletes all data", "Uploads data to a server", "Returns all records read-only", "Converts RBX to USD"}, Answer: 2},
		{Prompt: "Which value can never decrease?", Options: []string{"Balance", "Daily change", "Quiz high score", "Spins remaining"}, Answer: 2},
		{Prompt: "What happens to an unrevealed scratch card at the daily reset?", Options: []string{"It is revealed automatically", "It is discarded", "It doubles in value", "It carries over"}, Answer: 1},
		{Prompt: "Which source tag marks a user-entered transaction?", Options: []string{"spin", "manual", "share", "system"}, Answer: 1},
		{Prompt: "What does the wheel do when weights drift past the walk?", Options: []string{"Errors out", "Re-spins", "Returns the last segment", "Returns zero"}, Answer: 2},
		{Prompt: "How often can the daily check-in be claimed?", Options: []string{"Once per day", "Twice per day", "Once per week", "Once per hour"}, Answer: 0},
		{Prompt: "Where is the simulator's state stored?", Options: []string{"A cloud server", "Locally on the device", "A blockchain", "Nowhere"}, Answer: 1},
	}
}
