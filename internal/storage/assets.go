package storage

import "context"

func (p *SQLProvider) PutAsset(ctx context.Context, asset Asset) error {
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO assets (id, user_id, type, serial_number, brand, model, description,
			qr_code, verification_hash, is_active, is_reported_stolen, created_at, updated_at)
		VALUES (:id, :user_id, :type, :serial_number, :brand, :model, :description,
			:qr_code, :verification_hash, :is_active, :is_reported_stolen, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			type = excluded.type,
			serial_number = excluded.serial_number,
			brand = excluded.brand,
			model = excluded.model,
			description = excluded.description,
			qr_code = excluded.qr_code,
			verification_hash = excluded.verification_hash,
			is_active = excluded.is_active,
			is_reported_stolen = excluded.is_reported_stolen,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		asset)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateQRCode
	}
	return err
}

func (p *SQLProvider) GetAsset(ctx context.Context, id string) (*Asset, error) {
	return getOne[Asset](ctx, p, `SELECT * FROM assets WHERE id = ?`, id)
}

func (p *SQLProvider) GetAssetByQRCode(ctx context.Context, qrCode string) (*Asset, error) {
	return getOne[Asset](ctx, p, `SELECT * FROM assets WHERE qr_code = ?`, qrCode)
}

func (p *SQLProvider) ListAssetsByUser(ctx context.Context, userID string) ([]Asset, error) {
	var assets []Asset
	err := p.db.SelectContext(ctx, &assets,
		`SELECT * FROM assets WHERE user_id = ? ORDER BY created_at DESC`, userID)
	return assets, err
}

func (p *SQLProvider) DeleteAsset(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	return err
}

func (p *SQLProvider) ClearAssets(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM assets`)
	return err
}
