package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"swimschool/internal/database"
	"swimschool/internal/models"
	"swimschool/internal/repository"
)

// BackupVersion is written to every export and checked on import
const BackupVersion = "1"

// ErrUnsupportedBackup is returned when importing a document of another version
var ErrUnsupportedBackup = errors.New("unsupported backup version")

// UserBackup carries the password hash that models.User keeps out of JSON
type UserBackup struct {
	models.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

// BackupData is the complete data of one tenant
type BackupData struct {
	Version      string        `json:"version"`
	ExportedAt   time.Time     `json:"exportedAt"`
	DatabaseType string        `json:"databaseType"`
	Tenant       models.Tenant `json:"tenant"`

	Users             []UserBackup                `json:"users"`
	ServiceTypes      []models.ServiceType        `json:"serviceTypes"`
	Resources         []models.Resource           `json:"resources"`
	RecurringPatterns []models.RecurringPattern   `json:"recurringPatterns"`
	Bookings          []models.Booking            `json:"bookings"`
	Participants      []models.BookingParticipant `json:"participants"`
	SkillCategories   []models.SkillCategory      `json:"skillCategories"`
	Skills            []models.Skill              `json:"skills"`
	Assessments       []models.SkillAssessment    `json:"assessments"`
	Goals             []models.Goal               `json:"goals"`
	Badges            []models.Badge              `json:"badges"`
	StudentBadges     []models.StudentBadge       `json:"studentBadges"`
	Streaks           []models.AttendanceStreak   `json:"streaks"`
	PersonalBests     []models.PersonalBest       `json:"personalBests"`
	Media             []models.ProgressMedia      `json:"media"`
	Feedback          []models.LessonFeedback     `json:"feedback"`
	LessonNotes       []models.LessonNote         `json:"lessonNotes"`
	Notifications     []models.Notification       `json:"notifications"`
	Messages          []models.Message            `json:"messages"`
	Invoices          []models.Invoice            `json:"invoices"`
	InvoiceItems      []models.InvoiceItem        `json:"invoiceItems"`
	CreditPackages    []models.CreditPackage      `json:"creditPackages"`
	ClientCredits     []models.ClientCredit       `json:"clientCredits"`
	Expenses          []models.Expense            `json:"expenses"`
	AuditLogs         []models.AuditLog           `json:"auditLogs"`
}

// BackupService handles tenant export and restore
type BackupService struct {
	db  *database.DB
	now func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db, now: time.Now}
}

// Collect reads every collection of a tenant
func (s *BackupService) Collect(ctx context.Context, tenantID int64) (*BackupData, error) {
	repos := repository.New(s.db)

	tenant, err := repos.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %d not found", tenantID)
	}

	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   s.now(),
		DatabaseType: s.db.Dialect.DriverName(),
		Tenant:       *tenant,
	}

	users, err := repos.Users.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	backup.Users = make([]UserBackup, len(users))
	for i, u := range users {
		backup.Users[i] = UserBackup{User: u, PasswordHash: u.PasswordHash}
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"service types", func() (err error) { backup.ServiceTypes, err = repos.ServiceTypes.ListByTenant(ctx, tenantID); return }},
		{"resources", func() (err error) { backup.Resources, err = repos.Resources.ListByTenant(ctx, tenantID); return }},
		{"recurring patterns", func() (err error) {
			backup.RecurringPatterns, err = repos.RecurringPatterns.ListByTenant(ctx, tenantID)
			return
		}},
		{"bookings", func() (err error) { backup.Bookings, err = repos.Bookings.ListByTenant(ctx, tenantID); return }},
		{"participants", func() (err error) { backup.Participants, err = repos.Participants.ListByTenant(ctx, tenantID); return }},
		{"skill categories", func() (err error) { backup.SkillCategories, err = repos.Skills.ListCategories(ctx, tenantID); return }},
		{"skills", func() (err error) { backup.Skills, err = repos.Skills.ListSkills(ctx, tenantID); return }},
		{"assessments", func() (err error) { backup.Assessments, err = repos.Assessments.ListByTenant(ctx, tenantID); return }},
		{"goals", func() (err error) { backup.Goals, err = repos.Goals.ListByTenant(ctx, tenantID); return }},
		{"badges", func() (err error) { backup.Badges, err = repos.Badges.ListByTenant(ctx, tenantID); return }},
		{"student badges", func() (err error) { backup.StudentBadges, err = repos.Badges.ListStudentBadges(ctx, tenantID); return }},
		{"streaks", func() (err error) { backup.Streaks, err = repos.Streaks.ListByTenant(ctx, tenantID); return }},
		{"personal bests", func() (err error) { backup.PersonalBests, err = repos.PersonalBests.ListByTenant(ctx, tenantID); return }},
		{"media", func() (err error) { backup.Media, err = repos.Media.ListByTenant(ctx, tenantID); return }},
		{"feedback", func() (err error) { backup.Feedback, err = repos.Feedback.ListByTenant(ctx, tenantID); return }},
		{"lesson notes", func() (err error) { backup.LessonNotes, err = repos.LessonNotes.ListByTenant(ctx, tenantID); return }},
		{"notifications", func() (err error) { backup.Notifications, err = repos.Notifications.ListByTenant(ctx, tenantID); return }},
		{"messages", func() (err error) { backup.Messages, err = repos.Messages.ListByTenant(ctx, tenantID); return }},
		{"invoices", func() (err error) { backup.Invoices, err = repos.Invoices.ListByTenant(ctx, tenantID); return }},
		{"invoice items", func() (err error) { backup.InvoiceItems, err = repos.Invoices.ListItems(ctx, tenantID); return }},
		{"credit packages", func() (err error) { backup.CreditPackages, err = repos.Credits.ListPackages(ctx, tenantID); return }},
		{"client credits", func() (err error) { backup.ClientCredits, err = repos.Credits.ListClientCredits(ctx, tenantID); return }},
		{"expenses", func() (err error) { backup.Expenses, err = repos.Expenses.ListByTenant(ctx, tenantID); return }},
		{"audit logs", func() (err error) { backup.AuditLogs, err = repos.AuditLogs.ListByTenant(ctx, tenantID); return }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	return backup, nil
}

// Export writes a tenant backup as indented JSON
func (s *BackupService) Export(ctx context.Context, tenantID int64, w io.Writer) error {
	backup, err := s.Collect(ctx, tenantID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	slog.Info("Tenant exported", "tenant_id", tenantID, "users", len(backup.Users),
		"bookings", len(backup.Bookings), "assessments", len(backup.Assessments))
	return nil
}

// ExportFile writes a tenant backup to outputPath
func (s *BackupService) ExportFile(ctx context.Context, tenantID int64, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.Export(ctx, tenantID, file); err != nil {
		return err
	}
	return file.Close()
}

// ImportFile restores a backup file, see Import
func (s *BackupService) ImportFile(ctx context.Context, inputPath string) (int64, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.Import(ctx, file)
}

// Import restores a backup as a new tenant inside one transaction and returns
// the new tenant ID. Every row gets a fresh ID and references are rewritten;
// a reference to a row missing from the backup becomes zero (or nil).
func (s *BackupService) Import(ctx context.Context, r io.Reader) (int64, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return 0, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedBackup, backup.Version)
	}

	slog.Info("Importing backup", "version", backup.Version, "exported_at", backup.ExportedAt, "tenant", backup.Tenant.Name)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	imp := &importer{repos: repository.New(tx), ids: make(map[string]idMap)}
	if err := imp.run(ctx, &backup); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("Import completed", "tenant_id", imp.tenantID, "dangling_references", imp.dangling)
	return imp.tenantID, nil
}

type idMap map[int64]int64

type importer struct {
	repos    *repository.Repositories
	tenantID int64
	ids      map[string]idMap
	dangling int
}

func (imp *importer) table(name string) idMap {
	m, ok := imp.ids[name]
	if !ok {
		m = make(idMap)
		imp.ids[name] = m
	}
	return m
}

func (imp *importer) ref(table string, old int64) int64 {
	if old == 0 {
		return 0
	}
	id, ok := imp.ids[table][old]
	if !ok {
		imp.dangling++
	}
	return id
}

func (imp *importer) optRef(table string, old *int64) *int64 {
	if old == nil {
		return nil
	}
	id, ok := imp.ids[table][*old]
	if !ok {
		imp.dangling++
		return nil
	}
	return &id
}

// run inserts collections in dependency order
func (imp *importer) run(ctx context.Context, b *BackupData) error {
	r := imp.repos

	tenant := b.Tenant
	if err := r.Tenants.Create(ctx, &tenant); err != nil {
		return fmt.Errorf("failed to import tenant: %w", err)
	}
	imp.tenantID = tenant.ID
	tid := tenant.ID

	users := imp.table("users")
	for _, ub := range b.Users {
		u := ub.User
		old := u.ID
		u.TenantID = tid
		u.PasswordHash = ub.PasswordHash
		u.ParentID = nil
		if err := r.Users.Create(ctx, &u); err != nil {
			return fmt.Errorf("failed to import user %d: %w", old, err)
		}
		users[old] = u.ID
	}
	// parents may come after their children
	for _, ub := range b.Users {
		if ub.ParentID == nil {
			continue
		}
		u := ub.User
		u.ID = users[u.ID]
		u.TenantID = tid
		u.ParentID = imp.optRef("users", ub.ParentID)
		if err := r.Users.Update(ctx, &u); err != nil {
			return fmt.Errorf("failed to link parent of user %d: %w", ub.ID, err)
		}
	}

	services := imp.table("service_types")
	for _, st := range b.ServiceTypes {
		old := st.ID
		st.TenantID = tid
		if err := r.ServiceTypes.Create(ctx, &st); err != nil {
			return fmt.Errorf("failed to import service type %d: %w", old, err)
		}
		services[old] = st.ID
	}

	resources := imp.table("resources")
	for _, res := range b.Resources {
		old := res.ID
		res.TenantID = tid
		if err := r.Resources.Create(ctx, &res); err != nil {
			return fmt.Errorf("failed to import resource %d: %w", old, err)
		}
		resources[old] = res.ID
	}

	patterns := imp.table("recurring_patterns")
	for _, p := range b.RecurringPatterns {
		old := p.ID
		p.TenantID = tid
		p.ServiceTypeID = imp.ref("service_types", p.ServiceTypeID)
		p.InstructorID = imp.ref("users", p.InstructorID)
		p.ClientID = imp.ref("users", p.ClientID)
		if err := r.RecurringPatterns.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to import recurring pattern %d: %w", old, err)
		}
		patterns[old] = p.ID
	}

	bookings := imp.table("bookings")
	for _, bk := range b.Bookings {
		old := bk.ID
		bk.TenantID = tid
		bk.ServiceTypeID = imp.ref("service_types", bk.ServiceTypeID)
		bk.InstructorID = imp.ref("users", bk.InstructorID)
		bk.ResourceID = imp.optRef("resources", bk.ResourceID)
		bk.RecurringPatternID = imp.optRef("recurring_patterns", bk.RecurringPatternID)
		if err := r.Bookings.Create(ctx, &bk); err != nil {
			return fmt.Errorf("failed to import booking %d: %w", old, err)
		}
		bookings[old] = bk.ID
	}

	for _, p := range b.Participants {
		old := p.ID
		p.TenantID = tid
		p.BookingID = imp.ref("bookings", p.BookingID)
		p.ClientID = imp.ref("users", p.ClientID)
		if err := r.Participants.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to import participant %d: %w", old, err)
		}
	}

	if err := imp.skills(ctx, b); err != nil {
		return err
	}
	if err := imp.gamification(ctx, b); err != nil {
		return err
	}
	if err := imp.content(ctx, b); err != nil {
		return err
	}
	if err := imp.billing(ctx, b); err != nil {
		return err
	}
	return imp.auditLogs(ctx, b)
}

func (imp *importer) skills(ctx context.Context, b *BackupData) error {
	r, tid := imp.repos, imp.tenantID

	categories := imp.table("skill_categories")
	for _, c := range b.SkillCategories {
		old := c.ID
		c.TenantID = tid
		if err := r.Skills.CreateCategory(ctx, &c); err != nil {
			return fmt.Errorf("failed to import skill category %d: %w", old, err)
		}
		categories[old] = c.ID
	}

	skills := imp.table("skills")
	for _, sk := range b.Skills {
		old := sk.ID
		sk.TenantID = tid
		sk.CategoryID = imp.ref("skill_categories", sk.CategoryID)
		if err := r.Skills.CreateSkill(ctx, &sk); err != nil {
			return fmt.Errorf("failed to import skill %d: %w", old, err)
		}
		skills[old] = sk.ID
	}

	assessments := imp.table("skill_assessments")
	for _, a := range b.Assessments {
		old := a.ID
		a.TenantID = tid
		a.StudentID = imp.ref("users", a.StudentID)
		a.SkillID = imp.ref("skills", a.SkillID)
		a.AssessedBy = imp.ref("users", a.AssessedBy)
		if err := r.Assessments.Create(ctx, &a); err != nil {
			return fmt.Errorf("failed to import assessment %d: %w", old, err)
		}
		assessments[old] = a.ID
	}
	return nil
}

func (imp *importer) gamification(ctx context.Context, b *BackupData) error {
	r, tid := imp.repos, imp.tenantID

	goals := imp.table("goals")
	for _, g := range b.Goals {
		old := g.ID
		g.TenantID = tid
		g.StudentID = imp.ref("users", g.StudentID)
		if err := r.Goals.Create(ctx, &g); err != nil {
			return fmt.Errorf("failed to import goal %d: %w", old, err)
		}
		goals[old] = g.ID
	}

	badges := imp.table("badges")
	for _, bd := range b.Badges {
		old := bd.ID
		bd.TenantID = tid
		if err := r.Badges.Create(ctx, &bd); err != nil {
			return fmt.Errorf("failed to import badge %d: %w", old, err)
		}
		badges[old] = bd.ID
	}

	earned := imp.table("student_badges")
	for _, sb := range b.StudentBadges {
		old := sb.ID
		sb.TenantID = tid
		sb.StudentID = imp.ref("users", sb.StudentID)
		sb.BadgeID = imp.ref("badges", sb.BadgeID)
		if err := r.Badges.Award(ctx, &sb); err != nil {
			return fmt.Errorf("failed to import student badge %d: %w", old, err)
		}
		earned[old] = sb.ID
	}

	streaks := imp.table("attendance_streaks")
	for _, st := range b.Streaks {
		old := st.ID
		st.TenantID = tid
		st.StudentID = imp.ref("users", st.StudentID)
		if err := r.Streaks.Create(ctx, &st); err != nil {
			return fmt.Errorf("failed to import streak %d: %w", old, err)
		}
		streaks[old] = st.ID
	}

	bests := imp.table("personal_bests")
	for _, pb := range b.PersonalBests {
		old := pb.ID
		pb.TenantID = tid
		pb.StudentID = imp.ref("users", pb.StudentID)
		if err := r.PersonalBests.Create(ctx, &pb); err != nil {
			return fmt.Errorf("failed to import personal best %d: %w", old, err)
		}
		bests[old] = pb.ID
	}
	return nil
}

func (imp *importer) content(ctx context.Context, b *BackupData) error {
	r, tid := imp.repos, imp.tenantID

	media := imp.table("progress_media")
	for _, m := range b.Media {
		old := m.ID
		m.TenantID = tid
		m.StudentID = imp.ref("users", m.StudentID)
		m.BookingID = imp.optRef("bookings", m.BookingID)
		if err := r.Media.Create(ctx, &m); err != nil {
			return fmt.Errorf("failed to import media %d: %w", old, err)
		}
		media[old] = m.ID
	}

	feedback := imp.table("lesson_feedback")
	for _, f := range b.Feedback {
		old := f.ID
		f.TenantID = tid
		f.BookingID = imp.ref("bookings", f.BookingID)
		f.StudentID = imp.ref("users", f.StudentID)
		if err := r.Feedback.Create(ctx, &f); err != nil {
			return fmt.Errorf("failed to import feedback %d: %w", old, err)
		}
		feedback[old] = f.ID
	}

	notes := imp.table("lesson_notes")
	for _, n := range b.LessonNotes {
		old := n.ID
		n.TenantID = tid
		n.BookingID = imp.ref("bookings", n.BookingID)
		n.StudentID = imp.optRef("users", n.StudentID)
		n.AuthorID = imp.ref("users", n.AuthorID)
		if err := r.LessonNotes.Create(ctx, &n); err != nil {
			return fmt.Errorf("failed to import lesson note %d: %w", old, err)
		}
		notes[old] = n.ID
	}

	notifications := imp.table("notifications")
	for _, n := range b.Notifications {
		old := n.ID
		n.TenantID = tid
		n.UserID = imp.ref("users", n.UserID)
		if err := r.Notifications.Create(ctx, &n); err != nil {
			return fmt.Errorf("failed to import notification %d: %w", old, err)
		}
		notifications[old] = n.ID
	}

	messages := imp.table("messages")
	for _, m := range b.Messages {
		old := m.ID
		m.TenantID = tid
		m.SenderID = imp.ref("users", m.SenderID)
		m.RecipientID = imp.ref("users", m.RecipientID)
		if err := r.Messages.Create(ctx, &m); err != nil {
			return fmt.Errorf("failed to import message %d: %w", old, err)
		}
		messages[old] = m.ID
	}
	return nil
}

func (imp *importer) billing(ctx context.Context, b *BackupData) error {
	r, tid := imp.repos, imp.tenantID

	invoices := imp.table("invoices")
	for _, inv := range b.Invoices {
		old := inv.ID
		inv.TenantID = tid
		inv.ClientID = imp.ref("users", inv.ClientID)
		if err := r.Invoices.Create(ctx, &inv); err != nil {
			return fmt.Errorf("failed to import invoice %d: %w", old, err)
		}
		invoices[old] = inv.ID
	}

	for _, item := range b.InvoiceItems {
		old := item.ID
		item.TenantID = tid
		item.InvoiceID = imp.ref("invoices", item.InvoiceID)
		item.BookingID = imp.optRef("bookings", item.BookingID)
		if err := r.Invoices.CreateItem(ctx, &item); err != nil {
			return fmt.Errorf("failed to import invoice item %d: %w", old, err)
		}
	}

	packages := imp.table("credit_packages")
	for _, p := range b.CreditPackages {
		old := p.ID
		p.TenantID = tid
		if err := r.Credits.CreatePackage(ctx, &p); err != nil {
			return fmt.Errorf("failed to import credit package %d: %w", old, err)
		}
		packages[old] = p.ID
	}

	credits := imp.table("client_credits")
	for _, c := range b.ClientCredits {
		old := c.ID
		c.TenantID = tid
		c.ClientID = imp.ref("users", c.ClientID)
		c.PackageID = imp.ref("credit_packages", c.PackageID)
		if err := r.Credits.CreateClientCredit(ctx, &c); err != nil {
			return fmt.Errorf("failed to import client credit %d: %w", old, err)
		}
		credits[old] = c.ID
	}

	expenses := imp.table("expenses")
	for _, e := range b.Expenses {
		old := e.ID
		e.TenantID = tid
		if err := r.Expenses.Create(ctx, &e); err != nil {
			return fmt.Errorf("failed to import expense %d: %w", old, err)
		}
		expenses[old] = e.ID
	}
	return nil
}

// auditTables maps audit entity types onto the table their IDs refer to
var auditTables = map[string]string{
	"client":            "users",
	"booking":           "bookings",
	"skill_assessment":  "skill_assessments",
	"goal":              "goals",
	"personal_best":     "personal_bests",
	"attendance_streak": "attendance_streaks",
	"student_badge":     "student_badges",
	"lesson_note":       "lesson_notes",
	"lesson_feedback":   "lesson_feedback",
	"progress_media":    "progress_media",
	"notification":      "notifications",
	"message":           "messages",
	"service_type":      "service_types",
	"resource":          "resources",
	"recurring_pattern": "recurring_patterns",
	"invoice":           "invoices",
	"expense":           "expenses",
	"credit_package":    "credit_packages",
	"client_credit":     "client_credits",
}

func (imp *importer) auditLogs(ctx context.Context, b *BackupData) error {
	for _, l := range b.AuditLogs {
		old := l.ID
		l.TenantID = imp.tenantID
		l.UserID = imp.optRef("users", l.UserID)
		if table, ok := auditTables[l.EntityType]; ok {
			// deleted entities are expected here, keep their old ID
			if id, found := imp.ids[table][l.EntityID]; found {
				l.EntityID = id
			}
		}
		if err := imp.repos.AuditLogs.Create(ctx, &l); err != nil {
			return fmt.Errorf("failed to import audit log %d: %w", old, err)
		}
	}
	return nil
}
