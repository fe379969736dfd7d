package models

import "time"

// Domain models matching the database schema in db/migrations/0001_init.sql

// User is an account that owns offers. PasswordHash never leaves the server.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"-" db:"created"`
}

// Offer is a job offer owned by exactly one user.
type Offer struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"-" db:"user_id"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	SkillsList       []string  `json:"skills_list" db:"skills_list"`
	CreationDate     time.Time `json:"creation_date" db:"creation_date"`
	ModificationDate time.Time `json:"modification_date" db:"modification_date"`
}

// OfferPatch carries the fields of a partial offer update. Nil fields are left
// untouched.
type OfferPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	SkillsList  *[]string `json:"skills_list,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p OfferPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.SkillsList == nil
}

// Apply merges the set fields of p into o.
func (p OfferPatch) Apply(o *Offer) {
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.SkillsList != nil {
		o.SkillsList = append([]string(nil), (*p.SkillsList)...)
	}
}
