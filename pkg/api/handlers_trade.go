package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dd0wney/cluso-tradenet/pkg/source"
	"github.com/dd0wney/cluso-tradenet/pkg/trade"
	"github.com/dd0wney/cluso-tradenet/pkg/validation"
)

// CountriesResponse lists every country present in the trade network
type CountriesResponse struct {
	Countries []string `json:"countries"`
	Count     int      `json:"count"`
}

// RecordsResponse lists raw trade records
type RecordsResponse struct {
	Records []source.TradeRecord `json:"records"`
	Count   int                  `json:"count"`
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.source.Countries(r.Context())
	if err != nil {
		s.respondSourceError(w, r, err, "list countries")
		return
	}
	if countries == nil {
		countries = []string{}
	}
	s.respondJSON(w, http.StatusOK, CountriesResponse{Countries: countries, Count: len(countries)})
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "country"))
	if err != nil {
		s.respondErrorKind(w, http.StatusBadRequest, "country is not a valid path segment", "validation")
		return
	}

	req := validation.CountryRequest{Country: name}
	if err := validation.ValidateCountryRequest(&req); err != nil {
		s.respondErrorKind(w, http.StatusBadRequest, err.Error(), "validation")
		return
	}

	profile, err := trade.CountryProfile(r.Context(), s.source, req.Country)
	if err != nil {
		s.respondTradeError(w, r, err, "country profile")
		return
	}
	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req validation.CompareRequest
	qd := newQueryDecoder(r).
		String("a", &req.A).
		String("b", &req.B).
		Validate(func() error { return validation.ValidateCompareRequest(&req) })
	if qd.RespondError(s, w) {
		return
	}

	comparison, err := trade.Compare(r.Context(), s.source, req.A, req.B)
	if err != nil {
		s.respondTradeError(w, r, err, "compare")
		return
	}
	s.respondJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	req := validation.RecordsRequest{Limit: trade.DefaultTopRecords}
	qd := newQueryDecoder(r).
		Int("limit", &req.Limit).
		Validate(func() error { return validation.Struct(&req) })
	if qd.RespondError(s, w) {
		return
	}

	records, err := trade.TopRecords(r.Context(), s.source, req.Limit)
	if err != nil {
		s.respondSourceError(w, r, err, "list records")
		return
	}
	if records == nil {
		records = []source.TradeRecord{}
	}
	s.respondJSON(w, http.StatusOK, RecordsResponse{Records: records, Count: len(records)})
}

func (s *Server) respondTradeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	switch {
	case errors.Is(err, trade.ErrNoTradeData):
		s.respondErrorKind(w, http.StatusNotFound, err.Error(), "no_trade_data")
	case errors.Is(err, trade.ErrMissingCountry), errors.Is(err, trade.ErrSameCountry):
		s.respondErrorKind(w, http.StatusBadRequest, err.Error(), "validation")
	default:
		s.respondSourceError(w, r, err, operation)
	}
}
