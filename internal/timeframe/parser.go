package timeframe

import (
	"errors"
	"fmt"
	"time"
)

// Preset is one of the fixed look-back windows offered by the range selector.
type Preset string

const (
	Preset7D  Preset = "7D"
	Preset30D Preset = "30D"
	Preset90D Preset = "90D"
)

var ErrUnknownPreset = errors.New("unknown date range preset")

var presetDays = map[Preset]int{
	Preset7D:  7,
	Preset30D: 30,
	Preset90D: 90,
}

// Presets returns the supported presets in display order.
func Presets() []Preset {
	return []Preset{Preset7D, Preset30D, Preset90D}
}

// Days returns the look-back window of the preset.
func (p Preset) Days() (int, bool) {
	days, ok := presetDays[p]
	return days, ok
}

// Label returns the user-facing label, e.g. "Last 7 Days".
func (p Preset) Label() string {
	days, ok := p.Days()
	if !ok {
		return string(p)
	}
	return fmt.Sprintf("Last %d Days", days)
}

// Range returns the literal date range covered by the preset, ending today.
func (p Preset) Range(now time.Time) (DateRange, error) {
	days, ok := p.Days()
	if !ok {
		return DateRange{}, fmt.Errorf("%w: %q", ErrUnknownPreset, string(p))
	}
	today := truncateToDay(now)
	return DateRange{
		StartDate: today.AddDate(0, 0, -days).Format(DateLayout),
		EndDate:   today.Format(DateLayout),
		Label:     p.Label(),
	}, nil
}

type ParserParams struct {
	StartDate string
	EndDate   string
	Preset    string
}

// Period is a resolved request period. Current is what gets sent upstream
// (relative tokens are kept as given); From and To are its resolved calendar
// dates; Previous is the comparison period derived from them.
type Period struct {
	Current  DateRange `json:"current"`
	Previous DateRange `json:"previous"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// ResolvedStart returns the current period start as YYYY-MM-DD.
func (p Period) ResolvedStart() string {
	return p.From.Format(DateLayout)
}

// ResolvedEnd returns the current period end as YYYY-MM-DD.
func (p Period) ResolvedEnd() string {
	return p.To.Format(DateLayout)
}

// ParamError names the request parameter that could not be parsed.
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid '%s': %v", e.Param, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

type Parser struct {
	timeProvider TimeProvider
	loc          *time.Location
}

func NewParser(loc *time.Location, timeProvider ...TimeProvider) *Parser {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Parser{
		timeProvider: provider,
		loc:          loc,
	}
}

// Parse resolves request parameters into a Period. Explicit start and end
// dates win over a preset; when neither is complete the default 30-day
// window applies.
func (p *Parser) Parse(params ParserParams) (Period, error) {
	now := p.timeProvider.Now(p.loc)

	current, err := p.currentRange(params, now)
	if err != nil {
		return Period{}, &ParamError{Param: "range", Err: err}
	}

	from, err := ResolveDate(current.StartDate, now)
	if err != nil {
		return Period{}, &ParamError{Param: "startDate", Err: err}
	}
	to, err := ResolveDate(current.EndDate, now)
	if err != nil {
		return Period{}, &ParamError{Param: "endDate", Err: err}
	}
	if from.After(to) {
		return Period{}, &ParamError{
			Param: "dateRange",
			Err:   fmt.Errorf("%w: %s > %s", ErrInvertedRange, current.StartDate, current.EndDate),
		}
	}

	return Period{
		Current:  current,
		Previous: PreviousPeriodOf(from, to),
		From:     from,
		To:       to,
	}, nil
}

func (p *Parser) currentRange(params ParserParams, now time.Time) (DateRange, error) {
	if params.StartDate != "" && params.EndDate != "" {
		return DateRange{
			StartDate: params.StartDate,
			EndDate:   params.EndDate,
			Label:     LabelCustom,
		}, nil
	}

	if params.Preset != "" {
		return Preset(params.Preset).Range(now)
	}

	return DateRange{
		StartDate: DefaultStartDate,
		EndDate:   DefaultEndDate,
		Label:     LabelDefault,
	}, nil
}
