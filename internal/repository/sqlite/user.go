package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
)

const userColumns = `id, username, full_name, email, phone, password, role, status`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Phone, &u.Password, &role, &u.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.Role = roles.Role(role)
	return &u, nil
}

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}
	if u.Role == "" {
		u.Role = roles.Public
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO users (username, full_name, email, phone, password, role, status) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.FullName, u.Email, u.Phone, u.Password, string(u.Role), u.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepo) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Password != nil {
		add("password", *patch.Password)
	}
	if patch.Role != nil {
		add("role", string(*patch.Role))
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.conn.Exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
			return nil, err
		}
	}
	return r.GetUser(ctx, id)
}

func (r *SQLiteRepo) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
