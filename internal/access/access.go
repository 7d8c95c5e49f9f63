// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package access holds the static user table: who may log in and which
// clients each user may see.
package access

import (
	"errors"
	"fmt"
	"sort"

	"github.com/apex/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/staranto/clientdash/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrClientNotPermitted = errors.New("client not permitted")
	ErrNoUsers            = errors.New("no users configured")
)

// Account is one row of the table as it appears in the config file.
type Account struct {
	// Password is a bcrypt hash. See HashPassword.
	Password string   `yaml:"password"`
	Clients  []string `yaml:"clients"`
}

// User is an authenticated user.
type User struct {
	Name    string   `json:"user"`
	Clients []string `json:"clients"`
}

// Permits reports whether client is in the user's access list.
func (u User) Permits(client string) bool {
	for _, c := range u.Clients {
		if c == client {
			return true
		}
	}
	return false
}

// Table maps usernames to accounts. It is read-only after construction.
type Table struct {
	accounts map[string]Account
}

// NewTable copies accounts into a Table.
func NewTable(accounts map[string]Account) *Table {
	t := &Table{accounts: make(map[string]Account, len(accounts))}
	for name, a := range accounts {
		clients := make([]string, len(a.Clients))
		copy(clients, a.Clients)
		t.accounts[name] = Account{Password: a.Password, Clients: clients}
	}
	return t
}

// Load builds the Table from the "users" key of the loaded config.
func Load() (*Table, error) {
	var accounts map[string]Account
	if err := config.Decode("users", &accounts); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrNoUsers
	}
	log.Debugf("access: %d users", len(accounts))
	return NewTable(accounts), nil
}

// Authenticate checks the password of username. Unknown users and wrong
// passwords both return ErrInvalidCredentials.
func (t *Table) Authenticate(username, password string) (User, error) {
	a, ok := t.accounts[username]
	if !ok {
		// Burn roughly the same time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)); err != nil {
		log.WithField("user", username).Debug("access: password mismatch")
		return User{}, ErrInvalidCredentials
	}

	return t.user(username, a), nil
}

// Lookup returns the user without checking a password.
func (t *Table) Lookup(username string) (User, bool) {
	a, ok := t.accounts[username]
	if !ok {
		return User{}, false
	}
	return t.user(username, a), true
}

// Users returns the sorted usernames.
func (t *Table) Users() []string {
	names := make([]string, 0, len(t.accounts))
	for name := range t.accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) user(name string, a Account) User {
	clients := make([]string, len(a.Clients))
	copy(clients, a.Clients)
	return User{Name: name, Clients: clients}
}

// HashPassword returns the bcrypt hash to store in the config file.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z6dX6vGvC1k8oJQxQ5nE1x9K")
