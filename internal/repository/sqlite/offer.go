package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/joboffers/pkg/models"
	"github.com/garnizeh/joboffers/pkg/repository"
)

const offerColumns = `id, user_id, title, description, skills_list, creation_date, modification_date`

// CreateOffer inserts o. Zero timestamps are filled with the current time.
func (r *SQLiteRepo) CreateOffer(ctx context.Context, o *models.Offer) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("offer is nil")
	}

	skills, err := encodeSkills(o.SkillsList)
	if err != nil {
		return 0, err
	}

	created := o.CreationDate
	if created.IsZero() {
		created = now()
	}
	modified := o.ModificationDate
	if modified.IsZero() {
		modified = created
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO offers (user_id, title, description, skills_list, creation_date, modification_date) VALUES (?, ?, ?, ?, ?, ?)`,
		o.UserID, o.Title, o.Description, skills, toMicros(created), toMicros(modified))
	if err != nil {
		return 0, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	r.logger.Debug("offer created", slog.Int64("offer_id", id), slog.Int64("user_id", o.UserID))
	return id, nil
}

func (r *SQLiteRepo) GetOffer(ctx context.Context, userID, id int64) (*models.Offer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = ? AND user_id = ?`, id, userID)
	o, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return o, nil
}

func (r *SQLiteRepo) ListOffersByUser(ctx context.Context, userID int64) ([]models.Offer, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+offerColumns+` FROM offers WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *o)
	}

	return out, rows.Err()
}

// UpdateOffer writes only the fields set in patch, keyed by (id, userID), in a
// single statement. The stored modification date becomes modified, or one
// microsecond past its current value when that is not later.
func (r *SQLiteRepo) UpdateOffer(ctx context.Context, userID, id int64, patch models.OfferPatch, modified time.Time) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.SkillsList != nil {
		skills, err := encodeSkills(*patch.SkillsList)
		if err != nil {
			return err
		}
		sets = append(sets, "skills_list = ?")
		args = append(args, skills)
	}
	sets = append(sets, "modification_date = MAX(?, modification_date + 1)")
	args = append(args, toMicros(modified), id, userID)

	res, err := r.conn.Exec(ctx, `UPDATE offers SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return mapConstraint(err)
	}

	return expectAffected(res)
}

func (r *SQLiteRepo) DeleteOffer(ctx context.Context, userID, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM offers WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOffer(s scanner) (*models.Offer, error) {
	var (
		o                 models.Offer
		skills            string
		created, modified int64
	)
	if err := s.Scan(&o.ID, &o.UserID, &o.Title, &o.Description, &skills, &created, &modified); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(skills), &o.SkillsList); err != nil {
		return nil, fmt.Errorf("decode skills_list of offer %d: %w", o.ID, err)
	}
	if o.SkillsList == nil {
		o.SkillsList = []string{}
	}
	o.CreationDate = fromMicros(created)
	o.ModificationDate = fromMicros(modified)

	return &o, nil
}

func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}

	b, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("encode skills_list: %w", err)
	}

	return string(b), nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
