package repositories

import (
	"context"

	"eventflex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventFilter narrows event listings. Zero values are ignored.
type EventFilter struct {
	HostID      uint
	OrganizerID uint
	Status      string
	City        string
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, f EventFilter, limit, offset int) ([]models.Event, int64, error)
	WithTx(tx *gorm.DB) EventRepository
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &eventRepository{db: tx}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return translate(r.db.WithContext(ctx).Save(event).Error)
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context, f EventFilter, limit, offset int) ([]models.Event, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Event{})
		if f.HostID != 0 {
			q = q.Where("host_id = ?", f.HostID)
		}
		if f.OrganizerID != 0 {
			q = q.Where("organizer_id = ?", f.OrganizerID)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.City != "" {
			q = q.Where("LOWER(city) = LOWER(?)", f.City)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err := scope().Order("starts_at ASC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}
