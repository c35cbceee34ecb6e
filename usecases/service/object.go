package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"kamen/domain"
	"kamen/usecases"
)

// Service — вид голосования: держит локальный список опросов и синхронизирует
// его с сервисом опросов. Ошибки пишутся в лог, список при этом не меняется.
type Service struct {
	Repo   usecases.PollState
	Source usecases.PollSource

	logger zerolog.Logger
	once   sync.Once
	// loaded выставляется после первой завершённой загрузки,
	// inflight считает запросы списка, которые ещё идут
	loaded   atomic.Bool
	inflight atomic.Int32
}

func NewService(repo usecases.PollState, source usecases.PollSource, logger zerolog.Logger) *Service {
	return &Service{
		Repo:   repo,
		Source: source,
		logger: logger.With().Str("component", "pollview").Logger(),
	}
}

// Load загружает опросы при первом вызове; повторные вызовы ничего не делают.
func (s *Service) Load(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		err = s.fetch(ctx)
	})
	return err
}

// Reload загружает опросы заново независимо от прошлых загрузок.
func (s *Service) Reload(ctx context.Context) error {
	return s.fetch(ctx)
}

func (s *Service) fetch(ctx context.Context) error {
	s.inflight.Add(1)
	defer func() {
		s.loaded.Store(true)
		s.inflight.Add(-1)
	}()

	polls, err := s.Source.ListPolls(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Не удалось загрузить опросы")
		return err
	}
	s.Repo.ReplacePolls(polls)
	s.logger.Debug().Int("polls", len(polls)).Msg("Опросы загружены")
	return nil
}

// CastVote отправляет голос и, если сервис его подтвердил, заменяет варианты
// опроса теми, что пришли в ответе. Id локально не проверяются.
func (s *Service) CastVote(ctx context.Context, pollID, optionID int) error {
	log := s.logger.With().Int("poll_id", pollID).Int("option_id", optionID).Logger()

	res, err := s.Source.Vote(ctx, domain.VoteRequest{PollID: pollID, OptionID: optionID})
	if err != nil {
		log.Error().Err(err).Msg("Ошибка голосования")
		return err
	}
	if err := s.Repo.ApplyVote(pollID, *res); err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			log.Warn().Err(err).Msg("Ответ на голос для опроса, которого нет на странице")
		} else {
			log.Error().Err(err).Msg("Ошибка голосования")
		}
		return err
	}
	log.Info().Int("total_votes", res.TotalVotes).Msg("Голос учтён")
	return nil
}

func (s *Service) Polls() []domain.Poll {
	return s.Repo.ListPolls()
}

// Loading истинно, пока не завершилась первая загрузка или пока идёт
// хотя бы один запрос списка.
func (s *Service) Loading() bool {
	return !s.loaded.Load() || s.inflight.Load() > 0
}
