package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/samber/mo"

	"github.com/hray3182/daybook/internal/apperr"
	"github.com/hray3182/daybook/internal/calendar"
	"github.com/hray3182/daybook/internal/recurrence"
)

// maxSummarySpan bounds the occurrence list of the rule summary endpoint.
const maxSummarySpan = 3 * 366

type datesResponse struct {
	Dates []civil.Date `json:"dates"`
}

type ruleSummaryResponse struct {
	Rule        string       `json:"rule"`
	Summary     string       `json:"summary"`
	RRule       string       `json:"rrule,omitempty"`
	Occurrences []civil.Date `json:"occurrences"`
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dates, err := s.calendar.DatesWithEvents(r.Context(), year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, datesResponse{Dates: dates})
}

func (s *Server) handleLabelDates(w http.ResponseWriter, r *http.Request) {
	labelID, err := labelParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year, month, err := yearMonth(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dates, err := s.calendar.DatesForLabel(r.Context(), labelID, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, datesResponse{Dates: dates})
}

func (s *Server) handleLabelStats(w http.ResponseWriter, r *http.Request) {
	labelID, err := labelParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year, month, err := yearMonth(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stats, err := s.calendar.MonthlyStats(r.Context(), labelID, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleRuleSummary validates a rule encoding and previews it over
// [from, to].
func (s *Server) handleRuleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rule, err := recurrence.Parse(q.Get("rule"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	from, err := civil.ParseDate(q.Get("from"))
	if err != nil {
		s.writeError(w, r, apperr.Validation("from must be a YYYY-MM-DD date"))
		return
	}
	to, err := civil.ParseDate(q.Get("to"))
	if err != nil {
		s.writeError(w, r, apperr.Validation("to must be a YYYY-MM-DD date"))
		return
	}
	if to.Before(from) {
		s.writeError(w, r, apperr.Validation("to is before from"))
		return
	}
	if to.DaysSince(from) > maxSummarySpan {
		s.writeError(w, r, apperr.Validation(fmt.Sprintf("range is longer than %d days", maxSummarySpan)))
		return
	}

	resp := ruleSummaryResponse{
		Rule:        rule.String(),
		Summary:     recurrence.Summarize(rule, from, to),
		Occurrences: recurrence.Expand(rule, from, to, nil),
	}
	if resp.Occurrences == nil {
		resp.Occurrences = []civil.Date{}
	}
	if rr, err := recurrence.ToRRule(rule, from, to, nil); err == nil {
		resp.RRule = rr.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func labelParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "labelID"))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("label id must be a positive integer")
	}
	return id, nil
}

// yearMonth reads the optional year and month query parameters. Range checks
// are left to the calendar service.
func yearMonth(r *http.Request) (mo.Option[int], mo.Option[int], error) {
	year, err := optionalInt(r, "year")
	if err != nil {
		return year, mo.None[int](), err
	}
	month, err := optionalInt(r, "month")
	return year, month, err
}

func optionalInt(r *http.Request, name string) (mo.Option[int], error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return mo.None[int](), nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return mo.None[int](), calendar.ErrInvalidCalendarParameter.Wrap(fmt.Errorf("%s %q is not an integer", name, raw))
	}
	return mo.Some(v), nil
}
