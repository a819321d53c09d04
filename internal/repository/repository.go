package repository

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// OrganizationRepository defines the interface for organization and
// membership data access
type OrganizationRepository interface {
	// CreateWithOwner creates an organization and its first OWNER membership
	// in a single transaction
	CreateWithOwner(org *models.Organization, ownerID uint64) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// Delete removes an organization and cascades to memberships, contacts,
	// deals, tasks and activities
	Delete(id uint64) error

	// AddMember adds a member to an organization
	AddMember(member *models.OrganizationMember) error

	// RemoveMember removes a member from an organization
	RemoveMember(organizationID, userID uint64) error

	// UpdateMemberRole changes a member's role
	UpdateMemberRole(organizationID, userID uint64, role models.MemberRole) error

	// FindMember finds a specific organization member
	FindMember(organizationID, userID uint64) (*models.OrganizationMember, error)

	// ListMembers lists all members of an organization
	ListMembers(organizationID uint64) ([]models.OrganizationMember, error)

	// ListMembersByUserID lists all organizations a user is a member of
	ListMembersByUserID(userID uint64) ([]models.OrganizationMember, error)

	// CountMembersByRole counts members of an organization holding a role
	CountMembersByRole(organizationID uint64, role models.MemberRole) (int64, error)
}

// ContactFilter holds filtering options for listing contacts
type ContactFilter struct {
	OrganizationID uint64
	OwnerID        *uint64
	Search         string
	Page           int
	PageSize       int
}

// ContactRepository defines the interface for contact data access
type ContactRepository interface {
	// Create creates a new contact
	Create(contact *models.Contact) error

	// FindByIDInOrg finds a contact by ID scoped to an organization
	FindByIDInOrg(id, organizationID uint64) (*models.Contact, error)

	// Update updates a contact
	Update(contact *models.Contact) error

	// Delete deletes a contact
	Delete(id uint64) error

	// List retrieves contacts with filtering and pagination
	List(filter ContactFilter) ([]models.Contact, int64, error)
}

// DealFilter holds filtering options for listing deals
type DealFilter struct {
	OrganizationID uint64
	OwnerID        *uint64
	Statuses       []models.DealStatus
	Stage          *models.DealStage
	MinAmount      *float64
	MaxAmount      *float64
	OrderBy        string
	Descending     bool
	Page           int
	PageSize       int
}

// StatusAggregate is one row of the per-status summary aggregation.
type StatusAggregate struct {
	Status       models.DealStatus
	Count        int64
	TotalAmount  float64
	AvgWonAmount *float64
	NewDeals     int64
}

// StageStatusCount is one row of the (stage, status) funnel aggregation.
type StageStatusCount struct {
	Stage  models.DealStage
	Status models.DealStatus
	Count  int64
}

// DealRepository defines the interface for deal data access
type DealRepository interface {
	// Create creates a new deal
	Create(deal *models.Deal) error

	// FindByIDInOrg finds a deal by ID scoped to an organization, with
	// optional preloading
	FindByIDInOrg(id, organizationID uint64, preload ...string) (*models.Deal, error)

	// List retrieves deals with filtering, ordering and pagination
	List(filter DealFilter) ([]models.Deal, int64, error)

	// UpdateWithActivities loads the deal row under a write lock, hands it to
	// apply for mutation and validation, then persists the deal and any
	// returned activity records in the same transaction. An error from apply
	// rolls the whole update back
	UpdateWithActivities(id, organizationID uint64, apply func(deal *models.Deal) ([]models.Activity, error)) (*models.Deal, error)

	// Delete removes a deal and cascades to its tasks and activities
	Delete(id uint64) error

	// CountByContact counts deals referencing a contact
	CountByContact(contactID uint64) (int64, error)

	// Summarize aggregates deals per status within an organization,
	// optionally constrained to an owner; since bounds the new-deal count
	Summarize(organizationID uint64, ownerID *uint64, since time.Time) ([]StatusAggregate, error)

	// FunnelCounts aggregates deal counts per (stage, status) pair within an
	// organization, optionally constrained to an owner
	FunnelCounts(organizationID uint64, ownerID *uint64) ([]StageStatusCount, error)
}

// TaskFilter holds filtering options for listing tasks. Tasks are reached
// through their deal, so organization and owner scoping join the deals table.
type TaskFilter struct {
	OrganizationID uint64
	DealID         *uint64
	DealOwnerID    *uint64
	OnlyOpen       bool
	DueBefore      *time.Time
	DueAfter       *time.Time
	Page           int
	PageSize       int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithActivity creates a task and its TASK_CREATED audit entry in
	// a single transaction; the activity is built by the caller after the
	// task ID is assigned
	CreateWithActivity(task *models.Task, buildActivity func(task *models.Task) models.Activity) error

	// FindByID finds a task by ID with its deal preloaded
	FindByID(id uint64) (*models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id uint64) error

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)
}

// ActivityRepository defines the interface for the append-only activity log
type ActivityRepository interface {
	// Create appends an activity record
	Create(activity *models.Activity) error

	// ListByDeal returns a deal's activities in chronological order
	ListByDeal(dealID uint64) ([]models.Activity, error)
}
