package games

import (
	"errors"
	"fmt"
	"math/rand"
	"megaplatform/store"
	"strings"
	"time"
)

var (
	ErrGuessOutOfRange = errors.New("guess must be between 1 and 100")
	ErrUnknownQuestion = errors.New("unknown trivia question")
)

const (
	// Game labels as stored in the games table.
	GuessGameName  = "حدس عدد"
	TriviaGameName = "سوال هوش"

	guessMin         = 1
	guessMax         = 100
	celebrateScore   = 80
	triviaScore      = 100
	leaderboardLimit = 10
	timeLayout       = "2006-01-02 15:04:05"
)

type Service struct {
	store store.Store
}

func NewService(store store.Store) *Service {
	return &Service{store: store}
}

// --- Number guessing ---

type GuessResult struct {
	Secret    int  `json:"secret"`
	Guess     int  `json:"guess"`
	Score     int  `json:"score"`
	Celebrate bool `json:"celebrate"`
}

// GuessScore is the scoring rule: full marks for an exact hit, minus one
// point per unit of distance, floored at zero.
func GuessScore(guess, secret int) int {
	diff := secret - guess
	if diff < 0 {
		diff = -diff
	}
	score := 100 - diff
	if score < 0 {
		score = 0
	}
	return score
}

// PlayGuess draws the secret at evaluation time, scores the guess and
// persists the result.
func (s *Service) PlayGuess(user string, guess int) (*GuessResult, error) {
	if guess < guessMin || guess > guessMax {
		return nil, ErrGuessOutOfRange
	}

	secret := rand.Intn(guessMax-guessMin+1) + guessMin
	score := GuessScore(guess, secret)

	playedAt := time.Now().Format(timeLayout)
	if _, err := s.store.CreateGameResult(user, GuessGameName, score, playedAt); err != nil {
		return nil, fmt.Errorf("failed to save game result: %w", err)
	}

	return &GuessResult{
		Secret:    secret,
		Guess:     guess,
		Score:     score,
		Celebrate: score > celebrateScore,
	}, nil
}

// --- Trivia ---

type TriviaQuestion struct {
	Question string
	Answer   string
}

var triviaQuestions = []TriviaQuestion{
	{Question: "پایتخت ایران؟", Answer: "تهران"},
	{Question: "بزرگترین سیاره؟", Answer: "مشتری"},
	{Question: "نویسنده شاهنامه؟", Answer: "فردوسی"},
	{Question: "بلندترین کوه؟", Answer: "اورست"},
}

type TriviaResult struct {
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
	Expected string `json:"expected"`
}

// TriviaQuestionCount reports the size of the fixed question bank.
func TriviaQuestionCount() int {
	return len(triviaQuestions)
}

// RandomQuestion draws one question uniformly and returns its index along
// with the question text. The index is what the client submits back.
func (s *Service) RandomQuestion() (int, string) {
	i := rand.Intn(len(triviaQuestions))
	return i, triviaQuestions[i].Question
}

// AnswerTrivia checks the answer case-insensitively against the expected
// one. Only a correct answer persists a result; a wrong answer scores zero
// and leaves no row behind.
func (s *Service) AnswerTrivia(user string, questionIndex int, answer string) (*TriviaResult, error) {
	if questionIndex < 0 || questionIndex >= len(triviaQuestions) {
		return nil, ErrUnknownQuestion
	}
	q := triviaQuestions[questionIndex]

	if !strings.EqualFold(strings.TrimSpace(answer), q.Answer) {
		return &TriviaResult{Correct: false, Score: 0, Expected: q.Answer}, nil
	}

	playedAt := time.Now().Format(timeLayout)
	if _, err := s.store.CreateGameResult(user, TriviaGameName, triviaScore, playedAt); err != nil {
		return nil, fmt.Errorf("failed to save game result: %w", err)
	}

	return &TriviaResult{Correct: true, Score: triviaScore, Expected: q.Answer}, nil
}

// --- Leaderboard ---

// Leaderboard sums every user's scores across both games, descending.
// Ties fall back to database ordering.
func (s *Service) Leaderboard() ([]*store.LeaderboardEntry, error) {
	entries, err := s.store.Leaderboard(leaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}
