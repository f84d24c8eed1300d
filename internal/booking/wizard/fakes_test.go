package wizard

import (
	"context"
	"sync"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/booking/submitter"
	"booking_portal_backend/internal/geocoding"
	"booking_portal_backend/internal/geolocation"
	"booking_portal_backend/platform/apperr"
)

type fakeCatalog map[string]int64

func (c fakeCatalog) LookupService(_ context.Context, id string) (domain.ServiceInfo, error) {
	price, ok := c[id]
	if !ok {
		return domain.ServiceInfo{}, apperr.NotFound("service not found")
	}
	return domain.ServiceInfo{ID: id, Name: id, BasePrice: price}, nil
}

type fakeGeocoder struct {
	mu       sync.Mutex
	searches []string
	results  []geocoding.AddressSuggestion
	reverse  geocoding.AddressSuggestion
	revErr   error
}

func (g *fakeGeocoder) Search(_ context.Context, q string) ([]geocoding.AddressSuggestion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.searches = append(g.searches, q)
	return g.results, nil
}

func (g *fakeGeocoder) Reverse(context.Context, float64, float64) (geocoding.AddressSuggestion, error) {
	return g.reverse, g.revErr
}

type sent struct {
	kind    string
	draftID string
	in      submitter.Input
}

type fakeSubmitter struct {
	calls []sent
	err   error
}

func (s *fakeSubmitter) record(kind, draftID string, in submitter.Input) (submitter.Outcome, error) {
	s.calls = append(s.calls, sent{kind: kind, draftID: draftID, in: in})
	if s.err != nil {
		return submitter.Outcome{}, s.err
	}
	return submitter.Outcome{RequestID: "req-1", Redirect: submitter.ResultsPath}, nil
}

func (s *fakeSubmitter) Create(_ context.Context, in submitter.Input) (submitter.Outcome, error) {
	return s.record("create", "", in)
}

func (s *fakeSubmitter) UpdateFromDraft(_ context.Context, id string, in submitter.Input) (submitter.Outcome, error) {
	return s.record("update", id, in)
}

func (s *fakeSubmitter) SaveDraft(_ context.Context, in submitter.Input) (submitter.Outcome, error) {
	return s.record("draft", "", in)
}

type fakeProfile string

func (p fakeProfile) Phone(context.Context) (string, error) { return string(p), nil }

type fakeDrafts map[string]*domain.BookingDraft

func (d fakeDrafts) GetDraft(_ context.Context, id string) (*domain.BookingDraft, error) {
	draft, ok := d[id]
	if !ok {
		return nil, apperr.NotFound("draft not found")
	}
	return draft, nil
}

type countingLocator struct {
	calls int
	pos   geolocation.Position
	err   error
}

func (l *countingLocator) CurrentPosition(context.Context, geolocation.Options) (geolocation.Position, error) {
	l.calls++
	return l.pos, l.err
}

type harness struct {
	geocoder  *fakeGeocoder
	submitter *fakeSubmitter
	deps      Deps
}

func newHarness() *harness {
	h := &harness{
		geocoder: &fakeGeocoder{
			reverse: geocoding.AddressSuggestion{
				DisplayName: "Rue 12, Badalabougou, Bamako",
				Lat:         "12.63",
				Lon:         "-8.0",
				Address: geocoding.Address{
					Road:         "Rue 12",
					Suburb:       "Badalabougou",
					CityDistrict: "Commune V",
					City:         "Bamako",
				},
			},
		},
		submitter: &fakeSubmitter{},
	}
	h.deps = Deps{
		Catalog:   fakeCatalog{"plumber": 15000, "electrician": 15000, "painter": 10000},
		Geocoder:  h.geocoder,
		Submitter: h.submitter,
		Profile:   fakeProfile("+223 70 12 34 56"),
		Drafts: fakeDrafts{"d-1": {
			ID:          "d-1",
			ServiceID:   "plumber",
			City:        "Bamako",
			Description: "leak",
		}},
	}
	return h
}
