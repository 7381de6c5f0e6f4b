package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"vugru/internal/lifecycle"
	"vugru/internal/models"
)

// Sentinel errors for missing records. Handlers treat these as "no data"
// rather than hard failures.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Store wraps access to the SQLite database and exposes the document-store
// operations the portal needs: per-row atomic writes, partial updates, and
// cascading deletes.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            role TEXT NOT NULL,
            company TEXT NOT NULL DEFAULT '',
            rating REAL NOT NULL DEFAULT 0,
            specialties TEXT NOT NULL DEFAULT '[]',
            portfolio_url TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            client_id TEXT NOT NULL,
            client_name TEXT NOT NULL,
            client_email TEXT NOT NULL,
            project_name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            date DATETIME NOT NULL,
            deliverables TEXT NOT NULL DEFAULT '[]',
            budget TEXT NOT NULL DEFAULT '',
            location TEXT NOT NULL DEFAULT '',
            videographer_id TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            last_update DATETIME NOT NULL,
            last_message TEXT NOT NULL DEFAULT '',
            quoted_price TEXT NOT NULL DEFAULT '',
            estimated_duration TEXT NOT NULL DEFAULT '',
            included_services TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS comments (
            id TEXT PRIMARY KEY,
            project_id TEXT NOT NULL,
            text TEXT NOT NULL,
            author TEXT NOT NULL,
            author_id TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_videographer ON projects(videographer_id);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_project ON comments(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const projectColumns = `id, client_id, client_name, client_email, project_name, description, status,
        date, deliverables, budget, location, videographer_id, created_at, last_update,
        last_message, quoted_price, estimated_duration, included_services`

// CreateProject persists a new project request. It assigns the identifier and
// both timestamps and returns the stored record.
func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if strings.TrimSpace(p.ProjectName) == "" {
		return models.Project{}, fmt.Errorf("project name must not be empty")
	}

	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.LastUpdate = now
	if p.Status == "" {
		p.Status = models.StatusPending
	}

	deliverables, err := encodeStrings(p.Deliverables)
	if err != nil {
		return models.Project{}, fmt.Errorf("encode deliverables: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO projects(
            id, client_id, client_name, client_email, project_name, description, status,
            date, deliverables, budget, location, videographer_id, created_at, last_update,
            last_message, quoted_price, estimated_duration, included_services
        ) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', '', '', NULL)`,
		p.ID, p.ClientID, p.ClientName, p.ClientEmail, strings.TrimSpace(p.ProjectName), p.Description,
		string(p.Status), p.Date.UTC(), deliverables, p.Budget, p.Location, p.VideographerID,
		p.CreatedAt, p.LastUpdate)
	if err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}

	return s.GetProject(ctx, p.ID)
}

// GetProject fetches a single project with its comments in insertion order.
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, ErrProjectNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}

	comments, err := s.listComments(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	p.Comments = comments
	return p, nil
}

// ListProjectsFor returns the projects visible to a user: clients see the
// projects they requested, videographers the ones assigned to them. An empty
// result is a valid answer.
func (s *Store) ListProjectsFor(ctx context.Context, userID string, role models.Role) ([]models.Project, error) {
	column := "client_id"
	if role == models.RoleVideographer {
		column = "videographer_id"
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+column+` = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		comments, err := s.listComments(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Comments = comments
	}
	return projects, nil
}

// ApplyUpdate commits a lifecycle transition as one statement. Only the
// fields the transition set are written; everything else is untouched.
func (s *Store) ApplyUpdate(ctx context.Context, id string, u lifecycle.Update) (models.Project, error) {
	sets := []string{"status = ?", "last_update = ?"}
	args := []any{string(u.Status), u.LastUpdate.UTC()}

	if u.LastMessage != nil {
		sets = append(sets, "last_message = ?")
		args = append(args, *u.LastMessage)
	}
	if u.QuotedPrice != nil {
		sets = append(sets, "quoted_price = ?")
		args = append(args, *u.QuotedPrice)
	}
	if u.EstimatedDuration != nil {
		sets = append(sets, "estimated_duration = ?")
		args = append(args, *u.EstimatedDuration)
	}
	if u.IncludedServices != nil {
		encoded, err := encodeStrings(*u.IncludedServices)
		if err != nil {
			return models.Project{}, fmt.Errorf("encode included services: %w", err)
		}
		sets = append(sets, "included_services = ?")
		args = append(args, encoded)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Project{}, err
	}
	if affected == 0 {
		return models.Project{}, ErrProjectNotFound
	}
	return s.GetProject(ctx, id)
}

// AddComment appends a comment and refreshes the project's last_update in one
// transaction.
func (s *Store) AddComment(ctx context.Context, projectID string, comment models.Comment) (models.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Project{}, fmt.Errorf("begin comment tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE projects SET last_update = ? WHERE id = ?`, comment.CreatedAt.UTC(), projectID)
	if err != nil {
		return models.Project{}, fmt.Errorf("touch project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Project{}, err
	}
	if affected == 0 {
		return models.Project{}, ErrProjectNotFound
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO comments(id, project_id, text, author, author_id, created_at) VALUES(?, ?, ?, ?, ?, ?)`,
		comment.ID, projectID, comment.Text, comment.Author, comment.AuthorID, comment.CreatedAt.UTC())
	if err != nil {
		return models.Project{}, fmt.Errorf("insert comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Project{}, fmt.Errorf("commit comment: %w", err)
	}
	return s.GetProject(ctx, projectID)
}

// DeleteProject removes a project along with its comments. Irreversible.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *Store) listComments(ctx context.Context, projectID string) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, author, author_id, created_at FROM comments WHERE project_id = ? ORDER BY created_at ASC, rowid ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.Author, &c.AuthorID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CreateUser persists a user record together with its password hash.
func (s *Store) CreateUser(ctx context.Context, u models.User, passwordHash string) (models.User, error) {
	if strings.TrimSpace(u.Email) == "" {
		return models.User{}, fmt.Errorf("email must not be empty")
	}

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()

	specialties, err := encodeStrings(u.Specialties)
	if err != nil {
		return models.User{}, fmt.Errorf("encode specialties: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO users(id, name, email, role, company, rating, specialties, portfolio_url, password_hash, created_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, strings.ToLower(strings.TrimSpace(u.Email)), string(u.Role), u.Company, u.Rating, specialties, u.PortfolioURL, passwordHash, u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUser(ctx, u.ID)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, email, role, company, rating, specialties, portfolio_url, created_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user and its password hash for login checks.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, string, error) {
	var (
		u           models.User
		role        string
		specialties string
		hash        string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, email, role, company, rating, specialties, portfolio_url, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Name, &u.Email, &role, &u.Company, &u.Rating, &specialties, &u.PortfolioURL, &hash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrUserNotFound
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("get user by email: %w", err)
	}
	u.Role = models.Role(role)
	if err := json.Unmarshal([]byte(specialties), &u.Specialties); err != nil {
		return models.User{}, "", fmt.Errorf("decode specialties: %w", err)
	}
	return u, hash, nil
}

// ListUsersByRole returns all users with the given role, no pagination.
func (s *Store) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, role, company, rating, specialties, portfolio_url, created_at FROM users WHERE role = ? ORDER BY created_at ASC`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (models.Project, error) {
	var (
		p                models.Project
		status           string
		deliverables     string
		lastMessage      sql.NullString
		quotedPrice      sql.NullString
		duration         sql.NullString
		includedServices sql.NullString
	)
	err := sc.Scan(&p.ID, &p.ClientID, &p.ClientName, &p.ClientEmail, &p.ProjectName, &p.Description, &status,
		&p.Date, &deliverables, &p.Budget, &p.Location, &p.VideographerID, &p.CreatedAt, &p.LastUpdate,
		&lastMessage, &quotedPrice, &duration, &includedServices)
	if err != nil {
		return models.Project{}, err
	}

	p.Status = models.Status(status)
	p.LastMessage = lastMessage.String
	p.QuotedPrice = quotedPrice.String
	p.EstimatedDuration = duration.String
	if err := json.Unmarshal([]byte(deliverables), &p.Deliverables); err != nil {
		return models.Project{}, fmt.Errorf("decode deliverables: %w", err)
	}
	if includedServices.Valid {
		if err := json.Unmarshal([]byte(includedServices.String), &p.IncludedServices); err != nil {
			return models.Project{}, fmt.Errorf("decode included services: %w", err)
		}
	}
	p.Comments = []models.Comment{}
	return p, nil
}

func scanUser(sc scanner) (models.User, error) {
	var (
		u           models.User
		role        string
		specialties string
	)
	err := sc.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Company, &u.Rating, &specialties, &u.PortfolioURL, &u.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	u.Role = models.Role(role)
	if err := json.Unmarshal([]byte(specialties), &u.Specialties); err != nil {
		return models.User{}, fmt.Errorf("decode specialties: %w", err)
	}
	return u, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
