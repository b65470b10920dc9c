package pg

import (
	"context"
	"database/sql"
	"errors"

	"windspire.org/internal/directory"
	"windspire.org/internal/ids"
)

const countryColumns = `id, iso_name, iso_alpha_2, iso_alpha_3`

func mapCountryWriteError(err error) error {
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return directory.ErrConflict
		case pgErrForeignKeyViolation:
			// Referenced by users or boats.
			return directory.ErrConflict
		}
	}
	return err
}

func (s *Store) Countries(ctx context.Context) ([]directory.Country, error) {
	rows, err := s.db.QueryContext(ctx, `select `+countryColumns+` from countries order by iso_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []directory.Country
	for rows.Next() {
		var c directory.Country
		if err := rows.Scan(&c.ID, &c.IsoName, &c.IsoAlpha2, &c.IsoAlpha3); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) Country(ctx context.Context, id string) (directory.Country, error) {
	var c directory.Country
	err := s.db.QueryRowContext(ctx, `select `+countryColumns+` from countries where id = $1`, id).
		Scan(&c.ID, &c.IsoName, &c.IsoAlpha2, &c.IsoAlpha3)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Country{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Country{}, err
	}
	return c, nil
}

func (s *Store) CountryByCode(ctx context.Context, code string) (directory.Country, error) {
	var c directory.Country
	err := s.db.QueryRowContext(ctx, `
		select `+countryColumns+` from countries
		where iso_alpha_2 = $1 or iso_alpha_3 = $1
	`, code).Scan(&c.ID, &c.IsoName, &c.IsoAlpha2, &c.IsoAlpha3)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Country{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Country{}, err
	}
	return c, nil
}

func (s *Store) CreateCountry(ctx context.Context, in directory.CountryCreate) (directory.Country, error) {
	var c directory.Country
	err := s.db.QueryRowContext(ctx, `
		insert into countries (id, iso_name, iso_alpha_2, iso_alpha_3)
		values ($1, $2, $3, $4)
		returning `+countryColumns+`
	`, ids.New(), in.IsoName, in.IsoAlpha2, in.IsoAlpha3).
		Scan(&c.ID, &c.IsoName, &c.IsoAlpha2, &c.IsoAlpha3)
	if err != nil {
		return directory.Country{}, mapCountryWriteError(err)
	}
	return c, nil
}

func (s *Store) UpdateCountry(ctx context.Context, id string, in directory.CountryUpdate) (directory.Country, error) {
	var c directory.Country
	err := s.db.QueryRowContext(ctx, `
		update countries
		set iso_name = $1, iso_alpha_2 = $2, iso_alpha_3 = $3
		where id = $4
		returning `+countryColumns+`
	`, in.IsoName, in.IsoAlpha2, in.IsoAlpha3, id).
		Scan(&c.ID, &c.IsoName, &c.IsoAlpha2, &c.IsoAlpha3)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Country{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Country{}, mapCountryWriteError(err)
	}
	return c, nil
}

func (s *Store) DeleteCountry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from countries where id = $1`, id)
	if err != nil {
		return mapCountryWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return directory.ErrNotFound
	}
	return nil
}
