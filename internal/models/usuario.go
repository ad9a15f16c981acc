package models

import "time"

// Usuario represents a citizen or volunteer stored in the 'usuarios' table.
// EhVoluntario follows the legacy convention: 1 = volunteer, 0 = regular user.
type Usuario struct {
	ID           int64     `db:"id" json:"id"`
	Nome         string    `db:"nome" json:"nome"`
	Email        string    `db:"email" json:"email"`
	Telefone     string    `db:"telefone" json:"telefone"`
	EhVoluntario int       `db:"eh_voluntario" json:"eh_voluntario"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
