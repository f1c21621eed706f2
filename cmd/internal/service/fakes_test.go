package service

import (
	"context"
	"errors"
	"gobarber/cmd/internal/domain/entity"
	"iter"
	"sort"
)

var errDB = errors.New("database is gone")

// fakeStore backs both repositories with plain maps. Individual methods can
// be overridden through the func fields.
type fakeStore struct {
	users  map[int]*entity.User
	appts  map[int]*entity.Appointment
	nextID int

	createFn       func(ctx context.Context, appt *entity.Appointment) error
	findActiveAtFn func(ctx context.Context, providerID int, date int64) (*entity.Appointment, error)
	cancelFn       func(ctx context.Context, appt *entity.Appointment, at int64) error
}

func newFakeStore(users ...*entity.User) *fakeStore {
	s := &fakeStore{
		users: map[int]*entity.User{},
		appts: map[int]*entity.Appointment{},
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) summary(id int) *entity.UserSummary {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &entity.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s *fakeStore) FindByID(_ context.Context, id int) (*entity.User, error) {
	return s.users[id], nil
}

func (s *fakeStore) FindProvider(_ context.Context, id int) (*entity.User, error) {
	if u, ok := s.users[id]; ok && u.Provider {
		return u, nil
	}
	return nil, nil
}

func (s *fakeStore) ListProviders(_ context.Context) ([]*entity.UserSummary, error) {
	var out []*entity.UserSummary
	for _, u := range s.users {
		if u.Provider {
			out = append(out, s.summary(u.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeStore) Create(ctx context.Context, appt *entity.Appointment) error {
	if s.createFn != nil {
		return s.createFn(ctx, appt)
	}
	appt.ID = s.id()
	s.appts[appt.ID] = appt
	return nil
}

func (s *fakeStore) FindActiveAt(ctx context.Context, providerID int, date int64) (*entity.Appointment, error) {
	if s.findActiveAtFn != nil {
		return s.findActiveAtFn(ctx, providerID, date)
	}
	for _, a := range s.appts {
		if a.ProviderID == providerID && a.Date == date && !a.IsCanceled() {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) active(match func(*entity.Appointment) bool) []*entity.Appointment {
	var out []*entity.Appointment
	for _, a := range s.appts {
		if !a.IsCanceled() && match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *fakeStore) ListActiveByUser(_ context.Context, userID, page int) iter.Seq2[*entity.AppointmentListing, error] {
	return func(yield func(*entity.AppointmentListing, error) bool) {
		all := s.active(func(a *entity.Appointment) bool { return a.UserID == userID })
		start := min((page-1)*20, len(all))
		end := min(start+20, len(all))
		for _, a := range all[start:end] {
			if !yield(&entity.AppointmentListing{Appointment: a, Provider: s.summary(a.ProviderID)}, nil) {
				return
			}
		}
	}
}

func (s *fakeStore) FindDetailsByID(_ context.Context, id int) (*entity.AppointmentDetails, error) {
	a, ok := s.appts[id]
	if !ok {
		return nil, nil
	}
	return &entity.AppointmentDetails{Appointment: a, Provider: s.summary(a.ProviderID), User: s.summary(a.UserID)}, nil
}

func (s *fakeStore) FindActiveByProviderBetween(_ context.Context, providerID int, start, end int64) ([]*entity.AppointmentDetails, error) {
	var out []*entity.AppointmentDetails
	for _, a := range s.active(func(a *entity.Appointment) bool {
		return a.ProviderID == providerID && a.Date >= start && a.Date < end
	}) {
		out = append(out, &entity.AppointmentDetails{Appointment: a, User: s.summary(a.UserID)})
	}
	return out, nil
}

func (s *fakeStore) Cancel(ctx context.Context, appt *entity.Appointment, at int64) error {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, appt, at)
	}
	appt.CanceledAt = &at
	return nil
}

type fakeNotificationRepo struct {
	store  map[int]*entity.Notification
	nextID int

	createFn func(ctx context.Context, n *entity.Notification) error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{store: map[int]*entity.Notification{}}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, n)
	}
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = int64(f.nextID)
	f.store[n.ID] = n
	return nil
}

func (f *fakeNotificationRepo) FindByID(_ context.Context, id int) (*entity.Notification, error) {
	return f.store[id], nil
}

func (f *fakeNotificationRepo) FindRecentByUser(_ context.Context, userID, limit int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range f.store {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) Save(_ context.Context, n *entity.Notification) error {
	f.store[n.ID] = n
	return nil
}

type queuedJob struct {
	key     string
	payload any
}

type fakeQueue struct {
	jobs []queuedJob
	err  error
}

func (q *fakeQueue) Add(_ context.Context, key string, payload any) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, queuedJob{key: key, payload: payload})
	return nil
}
