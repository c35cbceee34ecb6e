package ramStorage

import (
	"fmt"
	"sync"

	"kamen/domain"
)

// RamStorage хранит опросы, которые сейчас показывает страница, в порядке сервиса.
type RamStorage struct {
	mu    sync.Mutex
	order []int
	polls map[int]*domain.Poll
}

func NewRamStorage() *RamStorage {
	return &RamStorage{
		polls: make(map[int]*domain.Poll),
	}
}

// ReplacePolls сбрасывает всё и сохраняет опросы так, как их вернул сервис.
func (rs *RamStorage) ReplacePolls(polls []domain.Poll) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.order = make([]int, 0, len(polls))
	rs.polls = make(map[int]*domain.Poll, len(polls))
	for _, p := range polls {
		p := p.Clone()
		if _, dup := rs.polls[p.ID]; !dup {
			rs.order = append(rs.order, p.ID)
		}
		rs.polls[p.ID] = &p
	}
}

func (rs *RamStorage) ListPolls() []domain.Poll {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	list := make([]domain.Poll, 0, len(rs.order))
	for _, id := range rs.order {
		list = append(list, rs.polls[id].Clone())
	}
	return list
}

func (rs *RamStorage) GetPoll(id int) (*domain.Poll, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	poll, exists := rs.polls[id]
	if !exists {
		return nil, fmt.Errorf("опрос с id %d: %w", id, domain.ErrPollNotFound)
	}
	p := poll.Clone()
	return &p, nil
}

// ApplyVote заменяет варианты и общее число голосов одного опроса значениями сервиса.
func (rs *RamStorage) ApplyVote(pollID int, res domain.VoteResult) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	poll, exists := rs.polls[pollID]
	if !exists {
		return fmt.Errorf("опрос с id %d: %w", pollID, domain.ErrPollNotFound)
	}
	if err := poll.Apply(res); err != nil {
		return fmt.Errorf("не удалось применить голос: %w", err)
	}
	return nil
}
