package pg

import (
	"context"
	"database/sql"
	"errors"

	"windspire.org/internal/directory"
	"windspire.org/internal/ids"
)

const userColumns = `id, first_name, last_name, email, phone, country_id, provider_id, provider_name, avatar_url, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (directory.User, error) {
	var (
		u                                       directory.User
		phone, providerID, providerName, avatar sql.NullString
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &phone, &u.CountryID,
		&providerID, &providerName, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return directory.User{}, err
	}
	u.Phone = phone.String
	u.ProviderID = providerID.String
	u.ProviderName = providerName.String
	u.AvatarURL = avatar.String
	return u, nil
}

func mapUserWriteError(err error) error {
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return directory.ErrConflict
		case pgErrForeignKeyViolation:
			return directory.ErrNotFound
		}
	}
	return err
}

func (s *Store) Users(ctx context.Context) ([]directory.UserWithCountry, error) {
	rows, err := s.db.QueryContext(ctx, `
		select u.id, u.first_name, u.last_name, u.email, u.phone, u.country_id,
		       u.provider_id, u.provider_name, u.avatar_url, u.created_at, u.updated_at,
		       c.iso_name
		from users u
		left join countries c on c.id = u.country_id
		order by u.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []directory.UserWithCountry
	for rows.Next() {
		var (
			u                                                directory.UserWithCountry
			phone, providerID, providerName, avatar, isoName sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &phone, &u.CountryID,
			&providerID, &providerName, &avatar, &u.CreatedAt, &u.UpdatedAt, &isoName); err != nil {
			return nil, err
		}
		u.Phone = phone.String
		u.ProviderID = providerID.String
		u.ProviderName = providerName.String
		u.AvatarURL = avatar.String
		u.IsoName = isoName.String
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) User(ctx context.Context, id string) (directory.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.User{}, directory.ErrNotFound
	}
	return u, err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (directory.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.User{}, directory.ErrNotFound
	}
	return u, err
}

func (s *Store) UserByProvider(ctx context.Context, providerID, providerName string) (directory.User, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+userColumns+` from users
		where provider_id = $1 and provider_name = $2
	`, providerID, providerName)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.User{}, directory.ErrNotFound
	}
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, in directory.UserCreate) (directory.User, error) {
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, first_name, last_name, email, phone, country_id, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, now(), now())
		returning `+userColumns+`
	`, ids.New(), in.FirstName, in.LastName, in.Email, nullIfEmpty(in.Phone), in.CountryID)
	u, err := scanUser(row)
	if err != nil {
		return directory.User{}, mapUserWriteError(err)
	}
	return u, nil
}

func (s *Store) CreateFederatedUser(ctx context.Context, in directory.FederatedUserCreate) (directory.User, error) {
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, first_name, last_name, email, phone, country_id,
		                   provider_id, provider_name, avatar_url, created_at, updated_at)
		values ($1, $2, $3, $4, null, $5, $6, $7, $8, now(), now())
		returning `+userColumns+`
	`, ids.New(), in.FirstName, in.LastName, in.Email, in.CountryID,
		in.ProviderID, in.ProviderName, nullIfEmpty(in.AvatarURL))
	u, err := scanUser(row)
	if err != nil {
		return directory.User{}, mapUserWriteError(err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, in directory.UserUpdate) (directory.User, error) {
	row := s.db.QueryRowContext(ctx, `
		update users
		set first_name = $1, last_name = $2, email = $3, phone = $4, country_id = $5, updated_at = now()
		where id = $6
		returning `+userColumns+`
	`, in.FirstName, in.LastName, in.Email, nullIfEmpty(in.Phone), in.CountryID, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.User{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.User{}, mapUserWriteError(err)
	}
	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return err
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

func (s *Store) LinkProvider(ctx context.Context, userID, providerID, providerName, avatarURL string) error {
	res, err := s.db.ExecContext(ctx, `
		update users
		set provider_id = $1, provider_name = $2, avatar_url = coalesce(nullif($3, ''), avatar_url), updated_at = now()
		where id = $4
	`, providerID, providerName, avatarURL, userID)
	if err != nil {
		return mapUserWriteError(err)
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

func (s *Store) UpdateUserNames(ctx context.Context, userID, firstName, lastName string) error {
	res, err := s.db.ExecContext(ctx, `
		update users set first_name = $1, last_name = $2, updated_at = now() where id = $3
	`, firstName, lastName, userID)
	if err != nil {
		return err
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

// RolesAndPermissions resolves the caller's role names and the distinct
// permission names granted through them.
func (s *Store) RolesAndPermissions(ctx context.Context, userID string) ([]string, []string, error) {
	roleRows, err := s.db.QueryContext(ctx, `
		select r.name
		from roles r
		inner join user_roles ur on r.id = ur.role_id
		where ur.user_id = $1
		order by r.name
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer roleRows.Close()

	var roles []string
	for roleRows.Next() {
		var name string
		if err := roleRows.Scan(&name); err != nil {
			return nil, nil, err
		}
		roles = append(roles, name)
	}
	if err := roleRows.Err(); err != nil {
		return nil, nil, err
	}

	permRows, err := s.db.QueryContext(ctx, `
		select distinct p.name
		from permissions p
		inner join role_permissions rp on p.id = rp.permission_id
		inner join user_roles ur on rp.role_id = ur.role_id
		where ur.user_id = $1
		order by p.name
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer permRows.Close()

	var permissions []string
	for permRows.Next() {
		var name string
		if err := permRows.Scan(&name); err != nil {
			return nil, nil, err
		}
		permissions = append(permissions, name)
	}
	return roles, permissions, permRows.Err()
}

func (s *Store) AssignRoleByName(ctx context.Context, userID, role string) error {
	var roleID string
	err := s.db.QueryRowContext(ctx, `select id from roles where name = $1`, role).Scan(&roleID)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into user_roles (user_id, role_id) values ($1, $2) on conflict do nothing
	`, userID, roleID)
	if err != nil {
		return mapUserWriteError(err)
	}
	return nil
}

// DefaultCountry returns Norway when seeded, otherwise any country.
func (s *Store) DefaultCountry(ctx context.Context) (directory.Country, error) {
	var c directory.Country
	err := s.db.QueryRowContext(ctx, `
		select id, iso_name, iso_alpha_2, iso_alpha_3 from countries
		where iso_alpha_2 = 'NO' or iso_alpha_3 = 'NOR'
		limit 1
	`).Scan(&c.ID, &c.IsoName, &c.IsoAlpha2, &c.IsoAlpha3)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return directory.Country{}, err
	}
	err = s.db.QueryRowContext(ctx, `
		select id, iso_name, iso_alpha_2, iso_alpha_3 from countries limit 1
	`).Scan(&c.ID, &c.IsoName, &c.IsoAlpha2, &c.IsoAlpha3)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Country{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Country{}, err
	}
	return c, nil
}
