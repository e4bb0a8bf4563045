package storage

import "context"

func (p *SQLProvider) AppendGateLog(ctx context.Context, log GateLog) error {
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO gate_logs (id, type, user_id, asset_id, vehicle_id, guard_id,
			status, timestamp, notes, location)
		VALUES (:id, :type, :user_id, :asset_id, :vehicle_id, :guard_id,
			:status, :timestamp, :notes, :location)`,
		log)
	return err
}

// ListGateLogs returns the newest logs first.
func (p *SQLProvider) ListGateLogs(ctx context.Context, limit int) ([]GateLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []GateLog
	err := p.db.SelectContext(ctx, &logs,
		`SELECT * FROM gate_logs ORDER BY timestamp DESC LIMIT ?`, limit)
	return logs, err
}

func (p *SQLProvider) ListGateLogsByGuard(ctx context.Context, guardID string) ([]GateLog, error) {
	var logs []GateLog
	err := p.db.SelectContext(ctx, &logs,
		`SELECT * FROM gate_logs WHERE guard_id = ? ORDER BY timestamp DESC`, guardID)
	return logs, err
}

func (p *SQLProvider) ListGateLogsByType(ctx context.Context, logType string) ([]GateLog, error) {
	var logs []GateLog
	err := p.db.SelectContext(ctx, &logs,
		`SELECT * FROM gate_logs WHERE type = ? ORDER BY timestamp DESC`, logType)
	return logs, err
}

func (p *SQLProvider) ClearGateLogs(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM gate_logs`)
	return err
}
