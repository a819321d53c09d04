package repository

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDealRepository is a GORM implementation of DealRepository
type GormDealRepository struct {
	db *gorm.DB
}

// NewDealRepository creates a new DealRepository
func NewDealRepository(db *gorm.DB) DealRepository {
	return &GormDealRepository{db: db}
}

// Create creates a new deal
func (r *GormDealRepository) Create(deal *models.Deal) error {
	return r.db.Create(deal).Error
}

// FindByIDInOrg finds a deal by ID scoped to an organization. A deal in
// another tenant surfaces as record-not-found.
func (r *GormDealRepository) FindByIDInOrg(id, organizationID uint64, preload ...string) (*models.Deal, error) {
	var deal models.Deal
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ? AND organization_id = ?", id, organizationID).
		First(&deal).Error; err != nil {
		return nil, err
	}

	return &deal, nil
}

// List retrieves deals with filtering, ordering and pagination
func (r *GormDealRepository) List(filter DealFilter) ([]models.Deal, int64, error) {
	var deals []models.Deal

	query := r.db.Model(&models.Deal{}).Where("organization_id = ?", filter.OrganizationID)

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Stage != nil {
		query = query.Where("stage = ?", *filter.Stage)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := filter.OrderBy
	switch orderBy {
	case "created_at", "updated_at", "amount", "title":
	default:
		orderBy = "created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	listQuery := query.Order(orderBy + " " + direction).Scopes(paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Contact").Find(&deals).Error; err != nil {
		return nil, 0, err
	}

	return deals, total, nil
}

// UpdateWithActivities runs a deal mutation as a locked read-modify-write.
// The row is read under FOR UPDATE inside the transaction and handed to
// apply, so validation runs against the committed state rather than a
// snapshot taken before the lock. Activities returned by apply are appended
// in the same transaction.
func (r *GormDealRepository) UpdateWithActivities(id, organizationID uint64, apply func(deal *models.Deal) ([]models.Activity, error)) (*models.Deal, error) {
	var updated *models.Deal

	err := r.db.Transaction(func(tx *gorm.DB) error {
		query := tx
		// SQLite has no FOR UPDATE; its single-writer model covers this path.
		if tx.Dialector.Name() != "sqlite" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var deal models.Deal
		if err := query.Where("id = ? AND organization_id = ?", id, organizationID).
			First(&deal).Error; err != nil {
			return err
		}

		activities, err := apply(&deal)
		if err != nil {
			return err
		}

		if err := tx.Save(&deal).Error; err != nil {
			return err
		}

		if len(activities) > 0 {
			if err := tx.Create(&activities).Error; err != nil {
				return err
			}
		}

		updated = &deal
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete deletes a deal and cascades to its tasks and activities
func (r *GormDealRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deal_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("deal_id = ?", id).Delete(&models.Activity{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Deal{}, id).Error
	})
}

// CountByContact counts deals referencing a contact
func (r *GormDealRepository) CountByContact(contactID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Deal{}).
		Where("contact_id = ?", contactID).
		Count(&count).Error
	return count, err
}

// Summarize aggregates deals per status in a single grouped query:
// count and amount total per status, the average amount among won deals, and
// how many deals were created at or after the cutoff.
func (r *GormDealRepository) Summarize(organizationID uint64, ownerID *uint64, since time.Time) ([]StatusAggregate, error) {
	var rows []StatusAggregate

	query := r.db.Model(&models.Deal{}).
		Select(`status,
			COUNT(id) AS count,
			COALESCE(SUM(amount), 0) AS total_amount,
			AVG(CASE WHEN status = ? THEN amount END) AS avg_won_amount,
			SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END) AS new_deals`,
			models.DealStatusWon, since).
		Where("organization_id = ?", organizationID)

	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// FunnelCounts aggregates deal counts per (stage, status) pair
func (r *GormDealRepository) FunnelCounts(organizationID uint64, ownerID *uint64) ([]StageStatusCount, error) {
	var rows []StageStatusCount

	query := r.db.Model(&models.Deal{}).
		Select("stage, status, COUNT(id) AS count").
		Where("organization_id = ?", organizationID)

	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	if err := query.Group("stage, status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
