package attempt

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu       sync.Mutex
	attempts map[string]*Attempt
	open     map[string]string // learner|quiz -> open attempt id
}

// NewInMemoryStore mirrors the SQL store's guarantees with a single lock:
// creates are conditional on the open index and appends mutate under the lock.
func NewInMemoryStore() Store {
	return &memoryStore{
		attempts: map[string]*Attempt{},
		open:     map[string]string{},
	}
}

func openKey(learnerID, quizID string) string { return learnerID + "|" + quizID }

func (m *memoryStore) FindOpen(_ context.Context, learnerID, quizID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.open[openKey(learnerID, quizID)]
	if !ok {
		return Attempt{}, ErrNoActiveAttempt
	}
	return copyOf(m.attempts[id]), nil
}

func (m *memoryStore) CountClosed(_ context.Context, learnerID, major string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.attempts {
		if a.LearnerID == learnerID && a.Major == major && a.EndedAt != nil {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) Create(_ context.Context, a Attempt) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := openKey(a.LearnerID, a.QuizID)
	if _, exists := m.open[k]; exists {
		return Attempt{}, ErrConflict
	}
	a.Score = 0
	a.TotalQuestions = 0
	a.Answers = []int{}
	a.EndedAt = nil
	stored := a
	m.attempts[a.ID] = &stored
	m.open[k] = a.ID
	return copyOf(&stored), nil
}

func (m *memoryStore) AppendAnswer(_ context.Context, attemptID string, selectedOption int, isCorrect bool) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok || a.EndedAt != nil {
		return Attempt{}, ErrNoActiveAttempt
	}
	a.Answers = append(a.Answers, selectedOption)
	a.TotalQuestions++
	if isCorrect {
		a.Score++
	}
	return copyOf(a), nil
}

func (m *memoryStore) Close(_ context.Context, attemptID string, endedAt int64) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok || a.EndedAt != nil {
		return Attempt{}, ErrNoActiveAttempt
	}
	a.TotalQuestions = len(a.Answers)
	a.EndedAt = &endedAt
	delete(m.open, openKey(a.LearnerID, a.QuizID))
	return copyOf(a), nil
}

func (m *memoryStore) Get(_ context.Context, attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return copyOf(a), nil
}

func (m *memoryStore) List(_ context.Context, learnerID string) ([]Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.LearnerID == learnerID {
			out = append(out, copyOf(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt != out[j].StartedAt {
			return out[i].StartedAt > out[j].StartedAt
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memoryStore) AggregateByMajor(_ context.Context, learnerID string) ([]MajorStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byMajor := map[string]*MajorStats{}
	for _, a := range m.attempts {
		if a.LearnerID != learnerID {
			continue
		}
		st, ok := byMajor[a.Major]
		if !ok {
			st = &MajorStats{Major: a.Major}
			byMajor[a.Major] = st
		}
		st.TotalAttempts++
		if a.EndedAt != nil {
			st.CompletedAttempts++
		} else {
			st.ActiveAttempts++
		}
	}
	out := make([]MajorStats, 0, len(byMajor))
	for _, st := range byMajor {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Major < out[j].Major })
	return out, nil
}

func copyOf(a *Attempt) Attempt {
	cp := *a
	cp.Answers = append([]int(nil), a.Answers...)
	if a.EndedAt != nil {
		v := *a.EndedAt
		cp.EndedAt = &v
	}
	return cp
}
