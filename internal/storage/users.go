package storage

import "context"

func (p *SQLProvider) PutUser(ctx context.Context, user User) error {
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, role, student_id, staff_id,
			phone, department, is_active, scholar_status, created_at, updated_at)
		VALUES (:id, :email, :first_name, :last_name, :role, :student_id, :staff_id,
			:phone, :department, :is_active, :scholar_status, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			role = excluded.role,
			student_id = excluded.student_id,
			staff_id = excluded.staff_id,
			phone = excluded.phone,
			department = excluded.department,
			is_active = excluded.is_active,
			scholar_status = excluded.scholar_status,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		user)
	return err
}

func (p *SQLProvider) GetUser(ctx context.Context, id string) (*User, error) {
	return getOne[User](ctx, p, `SELECT * FROM users WHERE id = ?`, id)
}

func (p *SQLProvider) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return getOne[User](ctx, p, `SELECT * FROM users WHERE email = ?`, email)
}

func (p *SQLProvider) ListUsersByRole(ctx context.Context, role string) ([]User, error) {
	var users []User
	err := p.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE role = ? ORDER BY first_name, last_name`, role)
	return users, err
}

func (p *SQLProvider) DeleteUser(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func (p *SQLProvider) ClearUsers(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM users`)
	return err
}
