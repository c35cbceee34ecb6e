package domain

import (
	"errors"
	"strconv"
)

var (
	// ErrPollNotFound возвращается, когда опроса с таким id нет в локальном состоянии.
	ErrPollNotFound = errors.New("poll not found")
	// ErrVoteRejected означает, что сервис ответил success: false.
	ErrVoteRejected = errors.New("vote rejected by poll service")
)

type Option struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID         int      `json:"id"`
	Question   string   `json:"question"`
	EndDate    string   `json:"endDate"`
	TotalVotes int      `json:"totalVotes"`
	Options    []Option `json:"options"`
}

// PollList — тело ответа на GET к сервису опросов.
type PollList struct {
	Polls []Poll `json:"polls"`
}

// VoteRequest — тело POST к сервису опросов.
type VoteRequest struct {
	PollID   int `json:"poll_id"`
	OptionID int `json:"option_id"`
}

// VoteResult — ответ сервиса на голос. Options и TotalVotes считаются
// истинными и заменяют локальную копию как есть.
type VoteResult struct {
	Success    bool     `json:"success"`
	Options    []Option `json:"options"`
	TotalVotes int      `json:"totalVotes"`
	Error      string   `json:"error,omitempty"`
}

// Apply заменяет варианты и общее число голосов значениями из ответа сервиса.
// Сумма голосов локально не пересчитывается.
func (p *Poll) Apply(res VoteResult) error {
	if !res.Success {
		return ErrVoteRejected
	}
	p.Options = append([]Option(nil), res.Options...)
	p.TotalVotes = res.TotalVotes
	return nil
}

// Clone возвращает копию опроса со своим срезом вариантов.
func (p Poll) Clone() Poll {
	p.Options = append([]Option(nil), p.Options...)
	return p
}

// Percent возвращает долю варианта в опросе с точностью до десятых.
func (p Poll) Percent(o Option) float64 {
	return Percent(o.Votes, p.TotalVotes)
}

// Percent возвращает votes/total*100, округлённое до десятых, или 0 при
// total == 0. Округление точное, половина вверх: считается в целых
// десятых процента, поэтому 23 из 80 (ровно 28.75) даёт 28.8.
func Percent(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	tenths := (2000*votes + total) / (2 * total)
	return float64(tenths) / 10
}

// FormatPercent готовит Percent для вывода: "52.4", а для пустого опроса "0".
func FormatPercent(votes, total int) string {
	if total <= 0 {
		return "0"
	}
	return strconv.FormatFloat(Percent(votes, total), 'f', 1, 64)
}
