package storage

import "context"

func (p *SQLProvider) PutWatchlistEntry(ctx context.Context, entry WatchlistEntry) error {
	entry.PlateNumber = NormalizePlate(entry.PlateNumber)
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO watchlist (plate_number, reason, added_at)
		VALUES (:plate_number, :reason, :added_at)
		ON CONFLICT (plate_number) DO UPDATE SET
			reason = excluded.reason,
			added_at = excluded.added_at`,
		entry)
	return err
}

func (p *SQLProvider) GetWatchlistEntry(ctx context.Context, plate string) (*WatchlistEntry, error) {
	return getOne[WatchlistEntry](ctx, p,
		`SELECT * FROM watchlist WHERE plate_number = ?`, NormalizePlate(plate))
}

func (p *SQLProvider) ClearWatchlist(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM watchlist`)
	return err
}
