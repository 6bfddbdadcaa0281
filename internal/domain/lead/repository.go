package lead

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type leadModel struct {
	ID      string `gorm:"column:id;primaryKey;size:36"`
	OwnerID string `gorm:"column:owner_id;not null;index;uniqueIndex:idx_leads_owner_email,priority:1"`

	FirstName string `gorm:"column:first_name;not null"`
	LastName  string `gorm:"column:last_name;not null"`
	Email     string `gorm:"column:email;not null;uniqueIndex:idx_leads_owner_email,priority:2"`
	Phone     string `gorm:"column:phone"`
	City      string `gorm:"column:city"`
	State     string `gorm:"column:state"`
	Country   string `gorm:"column:country"`

	Source    string  `gorm:"column:source;index"`
	Status    string  `gorm:"column:status;index"`
	Priority  string  `gorm:"column:priority"`
	LeadScore int     `gorm:"column:lead_score"`
	AIScore   float64 `gorm:"column:ai_score"`

	ProgramInterest []string `gorm:"column:program_interest;type:text;serializer:json"`
	Tags            []string `gorm:"column:tags;type:text;serializer:json"`

	AssignedTo       *string    `gorm:"column:assigned_to;index"`
	AssignedAt       *time.Time `gorm:"column:assigned_at"`
	AssignmentMethod string     `gorm:"column:assignment_method"`

	SearchText string `gorm:"column:search_text;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (leadModel) TableName() string { return "leads" }

type activityModel struct {
	ID           string         `gorm:"column:id;primaryKey;size:36"`
	LeadID       string         `gorm:"column:lead_id;not null;index"`
	ActivityType string         `gorm:"column:activity_type;not null"`
	Description  string         `gorm:"column:description"`
	Payload      map[string]any `gorm:"column:payload;type:text;serializer:json"`
	PerformedBy  string         `gorm:"column:performed_by"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
}

func (activityModel) TableName() string { return "lead_activities" }

type demoAccessModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Enabled   bool      `gorm:"column:enabled"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (demoAccessModel) TableName() string { return "demo_access" }

// Migrate creates or updates the lead tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&leadModel{}, &activityModel{}, &demoAccessModel{}); err != nil {
		return err
	}
	return backfillSearchText(db)
}

// backfillSearchText fills search_text for rows written before the column existed
func backfillSearchText(db *gorm.DB) error {
	var batch []leadModel
	return db.Where("search_text = ''").FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
		for _, m := range batch {
			l := toDomainLead(m)
			if err := tx.Model(&leadModel{}).Where("id = ?", m.ID).
				UpdateColumn("search_text", searchText(&l)).Error; err != nil {
				return err
			}
		}
		return nil
	}).Error
}

func toDomainLead(m leadModel) Lead {
	l := Lead{
		ID:               m.ID,
		OwnerID:          m.OwnerID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Email:            m.Email,
		Phone:            m.Phone,
		City:             m.City,
		State:            m.State,
		Country:          m.Country,
		Source:           Source(m.Source),
		Status:           Status(m.Status),
		Priority:         Priority(m.Priority),
		LeadScore:        m.LeadScore,
		AIScore:          m.AIScore,
		ProgramInterest:  orEmpty(m.ProgramInterest),
		Tags:             orEmpty(m.Tags),
		AssignedTo:       m.AssignedTo,
		AssignmentMethod: AssignmentMethod(m.AssignmentMethod),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
	if m.AssignedAt != nil {
		at := m.AssignedAt.UTC()
		l.AssignedAt = &at
	}
	return l
}

func toLeadModel(l *Lead) leadModel {
	var assignedAt *time.Time
	if l.AssignedAt != nil {
		at := l.AssignedAt.UTC()
		assignedAt = &at
	}
	return leadModel{
		ID:               l.ID,
		OwnerID:          l.OwnerID,
		FirstName:        l.FirstName,
		LastName:         l.LastName,
		Email:            l.Email,
		Phone:            l.Phone,
		City:             l.City,
		State:            l.State,
		Country:          l.Country,
		Source:           string(l.Source),
		Status:           string(l.Status),
		Priority:         string(l.Priority),
		LeadScore:        l.LeadScore,
		AIScore:          l.AIScore,
		ProgramInterest:  orEmpty(l.ProgramInterest),
		Tags:             orEmpty(l.Tags),
		AssignedTo:       l.AssignedTo,
		AssignedAt:       assignedAt,
		AssignmentMethod: string(l.AssignmentMethod),
		SearchText:       searchText(l),
		CreatedAt:        l.CreatedAt.UTC(),
		UpdatedAt:        l.UpdatedAt.UTC(),
	}
}

func toDomainActivity(m activityModel) Activity {
	return Activity{
		ID:           m.ID,
		LeadID:       m.LeadID,
		ActivityType: m.ActivityType,
		Description:  m.Description,
		Payload:      m.Payload,
		PerformedBy:  m.PerformedBy,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

// Repository handles lead data access
type Repository struct {
	db *gorm.DB
}

// NewRepository creates lead repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new lead
func (r *Repository) Create(ctx context.Context, l *Lead) error {
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = l.CreatedAt
	}
	if l.Status == "" {
		l.Status = StatusNew
	}

	m := toLeadModel(l)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	*l = toDomainLead(m)
	return nil
}

// GetByID retrieves lead by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Lead, error) {
	var m leadModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	l := toDomainLead(m)
	return &l, nil
}

// Find returns the owner's leads matching plan. limit <= 0 means no limit.
func (r *Repository) Find(ctx context.Context, ownerID string, plan Plan, limit, offset int) ([]Lead, error) {
	q, err := r.scoped(ctx, ownerID, plan)
	if err != nil {
		return nil, err
	}
	q = orderBy(q, plan.Sort)
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var models []leadModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	leads := make([]Lead, 0, len(models))
	for _, m := range models {
		leads = append(leads, toDomainLead(m))
	}
	return leads, nil
}

// Count returns how many of the owner's leads match plan
func (r *Repository) Count(ctx context.Context, ownerID string, plan Plan) (int64, error) {
	q, err := r.scoped(ctx, ownerID, plan)
	if err != nil {
		return 0, err
	}
	var total int64
	err = q.Count(&total).Error
	return total, err
}

// CountOwned returns how many leads the owner has at all
func (r *Repository) CountOwned(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&leadModel{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// Assign sets the advisor of a lead
func (r *Repository) Assign(ctx context.Context, id, advisorID string, method AssignmentMethod, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"assigned_to":       advisorID,
		"assigned_at":       at,
		"assignment_method": string(method),
		"updated_at":        at,
	})
}

// UpdateStatus sets the status of a lead
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     string(status),
		"updated_at": at,
	})
}

// UpdateTags replaces the tag set of a lead
func (r *Repository) UpdateTags(ctx context.Context, id string, tags []string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&leadModel{}).
		Where("id = ?", id).
		Select("tags", "updated_at").
		UpdateColumns(&leadModel{Tags: orEmpty(tags), UpdatedAt: at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// Delete removes a lead permanently
func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&leadModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// CountByStatus returns the owner's lead counts by status
func (r *Repository) CountByStatus(ctx context.Context, ownerID string) (map[Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&leadModel{}).
		Select("status, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[Status]int64, len(rows))
	for _, row := range rows {
		counts[Status(row.Status)] = row.Count
	}
	return counts, nil
}

// FilterOptions projects the distinct filterable values of the owner's leads
func (r *Repository) FilterOptions(ctx context.Context, ownerID string) (*FilterOptions, error) {
	opts := &FilterOptions{}
	owned := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&leadModel{}).Where("owner_id = ?", ownerID)
	}

	if err := owned().Distinct().Order("source").Pluck("source", &opts.Sources).Error; err != nil {
		return nil, err
	}
	if err := owned().Distinct().Order("status").Pluck("status", &opts.Statuses).Error; err != nil {
		return nil, err
	}
	if err := owned().Distinct().Order("priority").Pluck("priority", &opts.Priorities).Error; err != nil {
		return nil, err
	}
	if err := owned().Where("assigned_to IS NOT NULL").Distinct().Order("assigned_to").
		Pluck("assigned_to", &opts.Assignees).Error; err != nil {
		return nil, err
	}

	var programs []leadModel
	if err := owned().Select("program_interest").Find(&programs).Error; err != nil {
		return nil, err
	}
	for _, m := range programs {
		opts.Programs = append(opts.Programs, m.ProgramInterest...)
	}

	opts.normalize()
	return opts, nil
}

// AppendActivity inserts an activity entry
func (r *Repository) AppendActivity(ctx context.Context, a *Activity) error {
	m := activityModel{
		ID:           a.ID,
		LeadID:       a.LeadID,
		ActivityType: a.ActivityType,
		Description:  a.Description,
		Payload:      a.Payload,
		PerformedBy:  a.PerformedBy,
		CreatedAt:    a.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListActivities returns a lead's activities, newest first
func (r *Repository) ListActivities(ctx context.Context, leadID string) ([]Activity, error) {
	var models []activityModel
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]Activity, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainActivity(m))
	}
	return out, nil
}

// HasDemoAccess reports whether the demo flag is set for userID
func (r *Repository) HasDemoAccess(ctx context.Context, userID string) (bool, error) {
	var m demoAccessModel
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0 && m.Enabled, nil
}

// SetDemoAccess creates or updates the demo flag of userID
func (r *Repository) SetDemoAccess(ctx context.Context, userID string, enabled bool) error {
	m := demoAccessModel{UserID: userID, Enabled: enabled, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(&m).Error
}

func (r *Repository) scoped(ctx context.Context, ownerID string, plan Plan) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).
		Model(&leadModel{}).
		Where("owner_id = ?", ownerID)

	for _, c := range plan.Clauses {
		sql, args, err := c.ToSql()
		if err != nil {
			return nil, err
		}
		q = q.Where(sql, args...)
	}
	return q, nil
}

func (r *Repository) update(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&leadModel{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func orderBy(q *gorm.DB, sort SortSpec) *gorm.DB {
	field, ok := sortFields[sort.Field]
	if !ok {
		field, sort = sortFields[DefaultSort.Field], DefaultSort
	}
	return q.
		Order(clause.OrderByColumn{Column: clause.Column{Name: field.column}, Desc: sort.Direction == SortDesc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	return errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}
