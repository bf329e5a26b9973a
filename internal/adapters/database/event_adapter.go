package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/dancescene/discovery/internal/domain/entities"
	"github.com/dancescene/discovery/internal/domain/repositories"
	"github.com/dancescene/discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/dancescene/discovery/pkg/errors"
)

// EventAdapter loads single events with their venue, artists, and prices
type EventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEventAdapter creates a new event adapter
func NewEventAdapter(client *postgres.Client) repositories.EventRepository {
	return &EventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID returns the event with its related records, or a not-found error.
// Inactive events are treated as absent.
func (a *EventAdapter) GetByID(ctx context.Context, id string) (*entities.EventDetail, error) {
	detail := &entities.EventDetail{}

	if err := a.loadEvent(ctx, id, detail); err != nil {
		return nil, err
	}

	var err error
	if detail.Teachers, err = a.loadTeachers(ctx, id); err != nil {
		return nil, err
	}
	if detail.Musicians, err = a.loadMusicians(ctx, id); err != nil {
		return nil, err
	}
	if detail.Prices, err = a.loadPrices(ctx, id); err != nil {
		return nil, err
	}

	return detail, nil
}

func (a *EventAdapter) loadEvent(ctx context.Context, id string, detail *entities.EventDetail) error {
	query, args, err := a.db.From(goqu.T("events")).
		Join(goqu.T("venues"), goqu.On(goqu.I("events.venue_id").Eq(goqu.I("venues.id")))).
		Select(
			goqu.I("events.id"),
			goqu.I("events.name"),
			goqu.I("events.description"),
			goqu.I("events.start_date"),
			goqu.I("events.end_date"),
			goqu.I("events.venue_id"),
			goqu.I("events.styles"),
			goqu.I("events.event_types"),
			goqu.I("events.skill_levels"),
			goqu.I("events.featured"),
			goqu.I("events.save_count"),
			goqu.I("events.attendance_count"),
			goqu.I("events.review_count"),
			goqu.I("events.is_active"),
			goqu.I("events.created_at"),
			goqu.I("events.updated_at"),
			goqu.I("venues.id").As("v_id"),
			goqu.I("venues.name").As("v_name"),
			goqu.I("venues.address"),
			goqu.I("venues.city"),
			goqu.I("venues.country"),
			goqu.I("venues.latitude"),
			goqu.I("venues.longitude"),
		).
		Where(
			goqu.I("events.id").Eq(id),
			goqu.I("events.is_active").Eq(true),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build event query", err)
	}

	ev := &detail.Event
	venue := &detail.Venue
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&ev.ID,
		&ev.Name,
		&ev.Description,
		&ev.StartDate,
		&ev.EndDate,
		&ev.VenueID,
		pq.Array(&ev.Styles),
		pq.Array(&ev.EventTypes),
		pq.Array(&ev.SkillLevels),
		&ev.Featured,
		&ev.SaveCount,
		&ev.AttendanceCount,
		&ev.ReviewCount,
		&ev.IsActive,
		&ev.CreatedAt,
		&ev.UpdatedAt,
		&venue.ID,
		&venue.Name,
		&venue.Address,
		&venue.City,
		&venue.Country,
		&venue.Location.Latitude,
		&venue.Location.Longitude,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError("event not found")
	}
	if err != nil {
		return apperrors.NewStoreError("failed to load event", err)
	}
	return nil
}

func (a *EventAdapter) loadTeachers(ctx context.Context, eventID string) ([]entities.Teacher, error) {
	query, args, err := a.db.From(goqu.T("teachers")).
		Join(goqu.T("event_teachers"), goqu.On(goqu.I("event_teachers.teacher_id").Eq(goqu.I("teachers.id")))).
		Select(
			goqu.I("teachers.id"),
			goqu.I("teachers.name"),
			goqu.I("teachers.bio"),
			goqu.I("teachers.specialties"),
		).
		Where(goqu.I("event_teachers.event_id").Eq(eventID)).
		Order(goqu.I("teachers.name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build teachers query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to load event teachers", err)
	}
	defer rows.Close()

	teachers := []entities.Teacher{}
	for rows.Next() {
		var t entities.Teacher
		if err := rows.Scan(&t.ID, &t.Name, &t.Bio, pq.Array(&t.Specialties)); err != nil {
			return nil, apperrors.NewStoreError("failed to scan teacher", err)
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

func (a *EventAdapter) loadMusicians(ctx context.Context, eventID string) ([]entities.Musician, error) {
	query, args, err := a.db.From(goqu.T("musicians")).
		Join(goqu.T("event_musicians"), goqu.On(goqu.I("event_musicians.musician_id").Eq(goqu.I("musicians.id")))).
		Select(
			goqu.I("musicians.id"),
			goqu.I("musicians.name"),
			goqu.I("musicians.bio"),
			goqu.I("musicians.genres"),
		).
		Where(goqu.I("event_musicians.event_id").Eq(eventID)).
		Order(goqu.I("musicians.name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build musicians query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to load event musicians", err)
	}
	defer rows.Close()

	musicians := []entities.Musician{}
	for rows.Next() {
		var m entities.Musician
		if err := rows.Scan(&m.ID, &m.Name, &m.Bio, pq.Array(&m.Genres)); err != nil {
			return nil, apperrors.NewStoreError("failed to scan musician", err)
		}
		musicians = append(musicians, m)
	}
	return musicians, rows.Err()
}

func (a *EventAdapter) loadPrices(ctx context.Context, eventID string) ([]entities.Price, error) {
	query, args, err := a.db.From(goqu.T("prices")).
		Select(
			goqu.C("id"),
			goqu.C("event_id"),
			goqu.C("amount"),
			goqu.C("currency"),
			goqu.C("available"),
		).
		Where(goqu.C("event_id").Eq(eventID)).
		Order(goqu.C("amount").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build prices query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to load event prices", err)
	}
	defer rows.Close()

	prices := []entities.Price{}
	for rows.Next() {
		var p entities.Price
		if err := rows.Scan(&p.ID, &p.EventID, &p.Amount, &p.Currency, &p.Available); err != nil {
			return nil, apperrors.NewStoreError("failed to scan price", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}
