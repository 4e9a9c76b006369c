package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is the model for the 'users' table.
// Admin and super-admin membership live in the 'admins' and
// 'super_admins' side tables, not on the user row.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Role         string `json:"role" db:"role"`
	Status       string `json:"status" db:"status"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"fullName" db:"full_name"`
	PhoneNumber  string `json:"phoneNumber" db:"phone_number"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
