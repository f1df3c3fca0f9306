package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cosmetics_back_end/internal/models"

	"github.com/gocql/gocql"
)

const userColumns = `user_id, email, password, name, role, created_at, updated_at`

type ScyllaUsers struct {
	session *gocql.Session
}

func NewScyllaUsers(session *gocql.Session) *ScyllaUsers {
	return &ScyllaUsers{session: session}
}

func userDest(u *models.User) []interface{} {
	return []interface{}{&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt}
}

// Create réserve d'abord l'email (INSERT ... IF NOT EXISTS) pour garantir
// l'unicité, puis écrit l'utilisateur.
func (r *ScyllaUsers) Create(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	if u.ID == (gocql.UUID{}) {
		u.ID = gocql.TimeUUID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	var existingEmail string
	var existingID gocql.UUID
	applied, err := r.session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`, u.Email, u.ID).
		WithContext(ctx).ScanCAS(&existingEmail, &existingID)
	if err != nil {
		return fmt.Errorf("réservation email: %w", err)
	}
	if !applied {
		return ErrEmailTaken
	}

	if err := r.session.Query(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Password, u.Name, u.Role, u.CreatedAt, u.UpdatedAt).WithContext(ctx).Exec(); err != nil {
		_ = r.session.Query(`DELETE FROM users_by_email WHERE email = ?`, u.Email).WithContext(ctx).Exec()
		return fmt.Errorf("création utilisateur: %w", err)
	}
	return nil
}

func (r *ScyllaUsers) GetByID(ctx context.Context, id gocql.UUID) (*models.User, error) {
	var u models.User
	if err := r.session.Query(`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id).
		WithContext(ctx).Scan(userDest(&u)...); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (r *ScyllaUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var id gocql.UUID
	if err := r.session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, normalizeEmail(email)).
		WithContext(ctx).Scan(&id); err != nil {
		return nil, mapNotFound(err)
	}
	return r.GetByID(ctx, id)
}

func (r *ScyllaUsers) List(ctx context.Context) ([]models.User, error) {
	iter := r.session.Query(`SELECT ` + userColumns + ` FROM users`).WithContext(ctx).Iter()

	users := []models.User{}
	var u models.User
	for iter.Scan(userDest(&u)...) {
		users = append(users, u)
		u = models.User{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture utilisateurs: %w", err)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *ScyllaUsers) UpdateRole(ctx context.Context, id gocql.UUID, role string) error {
	applied, err := r.session.Query(`UPDATE users SET role = ?, updated_at = ? WHERE user_id = ? IF EXISTS`,
		role, time.Now().UTC(), id).WithContext(ctx).ScanCAS()
	if err != nil {
		return fmt.Errorf("mise à jour rôle: %w", err)
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (r *ScyllaUsers) Delete(ctx context.Context, id gocql.UUID) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM users WHERE user_id = ?`, id)
	batch.Query(`DELETE FROM users_by_email WHERE email = ?`, u.Email)
	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("suppression utilisateur: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
