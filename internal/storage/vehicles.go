package storage

import "context"

// PutVehicle upserts a vehicle snapshot. The plate is stored in
// normalized form so offline lookups match however the guard types it.
func (p *SQLProvider) PutVehicle(ctx context.Context, vehicle Vehicle) error {
	vehicle.PlateNumber = NormalizePlate(vehicle.PlateNumber)
	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO vehicles (id, user_id, plate_number, make, model, color, year,
			qr_code, verification_hash, is_active, is_reported_stolen, created_at, updated_at)
		VALUES (:id, :user_id, :plate_number, :make, :model, :color, :year,
			:qr_code, :verification_hash, :is_active, :is_reported_stolen, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			plate_number = excluded.plate_number,
			make = excluded.make,
			model = excluded.model,
			color = excluded.color,
			year = excluded.year,
			qr_code = excluded.qr_code,
			verification_hash = excluded.verification_hash,
			is_active = excluded.is_active,
			is_reported_stolen = excluded.is_reported_stolen,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		vehicle)
	return err
}

func (p *SQLProvider) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	return getOne[Vehicle](ctx, p, `SELECT * FROM vehicles WHERE id = ?`, id)
}

func (p *SQLProvider) GetVehicleByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	return getOne[Vehicle](ctx, p,
		`SELECT * FROM vehicles WHERE plate_number = ? ORDER BY updated_at DESC LIMIT 1`,
		NormalizePlate(plate))
}

func (p *SQLProvider) ListVehiclesByUser(ctx context.Context, userID string) ([]Vehicle, error) {
	var vehicles []Vehicle
	err := p.db.SelectContext(ctx, &vehicles,
		`SELECT * FROM vehicles WHERE user_id = ? ORDER BY created_at DESC`, userID)
	return vehicles, err
}

func (p *SQLProvider) DeleteVehicle(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	return err
}

func (p *SQLProvider) ClearVehicles(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM vehicles`)
	return err
}
