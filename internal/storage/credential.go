package storage

import "context"

// The credential table holds at most one row. Last write wins, which is
// also the arbitration rule for two racing logins.
func (p *SQLProvider) PutCredential(ctx context.Context, cred Credential) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO credential (id, token, user_id, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			saved_at = excluded.saved_at`,
		cred.Token, cred.UserID, cred.SavedAt)
	return err
}

func (p *SQLProvider) GetCredential(ctx context.Context) (*Credential, error) {
	return getOne[Credential](ctx, p,
		`SELECT token, user_id, saved_at FROM credential WHERE id = 1`)
}

func (p *SQLProvider) DeleteCredential(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM credential WHERE id = 1`)
	return err
}
