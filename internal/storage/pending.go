package storage

import "context"

// AppendPendingAction inserts a queue entry. Re-appending an id that is
// already queued is a no-op, which makes duplicate submission detectable.
func (p *SQLProvider) AppendPendingAction(ctx context.Context, action PendingAction) error {
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO pending_actions (id, kind, payload, created_at)
		VALUES (:id, :kind, :payload, :created_at)
		ON CONFLICT (id) DO NOTHING`,
		action)
	return err
}

// ListPendingActions returns queued actions in insertion order. Action ids
// are derived from creation time and zero-padded, so lexical order is
// insertion order.
func (p *SQLProvider) ListPendingActions(ctx context.Context) ([]PendingAction, error) {
	var actions []PendingAction
	err := p.db.SelectContext(ctx, &actions,
		`SELECT * FROM pending_actions ORDER BY id ASC`)
	return actions, err
}

func (p *SQLProvider) DeletePendingAction(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ?`, id)
	return err
}

func (p *SQLProvider) ClearPendingActions(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM pending_actions`)
	return err
}
