package pg

import (
	"context"
	"database/sql"
	"errors"

	"windspire.org/internal/fleet"
	"windspire.org/internal/ids"
)

const boatColumns = `id, name, brand, model, sail_number, country_id`

func scanBoat(row interface{ Scan(...any) error }) (fleet.Boat, error) {
	var (
		b                                   fleet.Boat
		brand, model, sailNumber, countryID sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Name, &brand, &model, &sailNumber, &countryID); err != nil {
		return fleet.Boat{}, err
	}
	b.Brand = brand.String
	b.Model = model.String
	b.SailNumber = sailNumber.String
	b.CountryID = countryID.String
	return b, nil
}

func mapFleetWriteError(err error) error {
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return fleet.ErrConflict
		case pgErrForeignKeyViolation:
			return fleet.ErrNotFound
		}
	}
	return err
}

func (s *Store) Boats(ctx context.Context) ([]fleet.Boat, error) {
	rows, err := s.db.QueryContext(ctx, `select `+boatColumns+` from boats order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fleet.Boat
	for rows.Next() {
		b, err := scanBoat(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (s *Store) Boat(ctx context.Context, id string) (fleet.Boat, error) {
	row := s.db.QueryRowContext(ctx, `select `+boatColumns+` from boats where id = $1`, id)
	b, err := scanBoat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fleet.Boat{}, fleet.ErrNotFound
	}
	return b, err
}

func (s *Store) CreateBoat(ctx context.Context, in fleet.BoatCreate) (fleet.Boat, error) {
	row := s.db.QueryRowContext(ctx, `
		insert into boats (id, name, brand, model, sail_number, country_id)
		values ($1, $2, $3, $4, $5, $6)
		returning `+boatColumns+`
	`, ids.New(), in.Name, nullIfEmpty(in.Brand), nullIfEmpty(in.Model),
		nullIfEmpty(in.SailNumber), nullIfEmpty(in.CountryID))
	b, err := scanBoat(row)
	if err != nil {
		return fleet.Boat{}, mapFleetWriteError(err)
	}
	return b, nil
}

func (s *Store) UpdateBoat(ctx context.Context, id string, in fleet.BoatUpdate) (fleet.Boat, error) {
	row := s.db.QueryRowContext(ctx, `
		update boats
		set name = $1, brand = $2, model = $3, sail_number = $4, country_id = $5
		where id = $6
		returning `+boatColumns+`
	`, in.Name, nullIfEmpty(in.Brand), nullIfEmpty(in.Model),
		nullIfEmpty(in.SailNumber), nullIfEmpty(in.CountryID), id)
	b, err := scanBoat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fleet.Boat{}, fleet.ErrNotFound
	}
	if err != nil {
		return fleet.Boat{}, mapFleetWriteError(err)
	}
	return b, nil
}

func (s *Store) DeleteBoat(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from boats where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fleet.ErrNotFound
	}
	return nil
}

// AddOwner links a user to a boat. Repeating an existing pair is a
// no-op rather than a conflict.
func (s *Store) AddOwner(ctx context.Context, boatID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into boat_owners (boat_id, user_id) values ($1, $2)
		on conflict do nothing
	`, boatID, userID)
	if err != nil {
		return mapFleetWriteError(err)
	}
	return nil
}

func (s *Store) RemoveOwner(ctx context.Context, boatID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		delete from boat_owners where boat_id = $1 and user_id = $2
	`, boatID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fleet.ErrNotFound
	}
	return nil
}

func (s *Store) OwnersForBoat(ctx context.Context, boatID string) ([]fleet.Owner, error) {
	rows, err := s.db.QueryContext(ctx, `
		select u.id, u.first_name, u.last_name, u.email, u.phone, u.country_id,
		       c.iso_name, u.avatar_url
		from users u
		inner join boat_owners bo on bo.user_id = u.id
		left join countries c on c.id = u.country_id
		where bo.boat_id = $1
		order by u.id
	`, boatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fleet.Owner
	for rows.Next() {
		var (
			o                      fleet.Owner
			phone, isoName, avatar sql.NullString
		)
		if err := rows.Scan(&o.UserID, &o.FirstName, &o.LastName, &o.Email, &phone,
			&o.CountryID, &isoName, &avatar); err != nil {
			return nil, err
		}
		o.Phone = phone.String
		o.IsoName = isoName.String
		o.AvatarURL = avatar.String
		result = append(result, o)
	}
	return result, rows.Err()
}

func (s *Store) BoatsForUser(ctx context.Context, userID string) ([]fleet.Boat, error) {
	rows, err := s.db.QueryContext(ctx, `
		select b.id, b.name, b.brand, b.model, b.sail_number, b.country_id
		from boats b
		inner join boat_owners bo on bo.boat_id = b.id
		where bo.user_id = $1
		order by b.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fleet.Boat
	for rows.Next() {
		b, err := scanBoat(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
