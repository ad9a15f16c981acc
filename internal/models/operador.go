package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Operador is a platform operator account in the 'operadores' table.
// Operators authenticate to perform destructive operations (deletes).
type Operador struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Claims defines the structure of the JWT claims issued on login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
