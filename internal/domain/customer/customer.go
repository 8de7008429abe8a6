package customer

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("customer: not found")
	ErrConflict      = errors.New("customer: already exists")
	ErrInvalidPoints = errors.New("customer: points must be zero or greater")
)

// Customer carries the loyalty-point balance for a repeat shopper.
// Anonymous sales simply have no customer attached.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Points    int
	UpdatedAt time.Time
}

func New(id, name, phone string) *Customer {
	return &Customer{
		ID:        id,
		Name:      name,
		Phone:     phone,
		UpdatedAt: time.Now().UTC(),
	}
}

func (c *Customer) AddPoints(points int) error {
	if points < 0 {
		return ErrInvalidPoints
	}
	c.Points += points
	c.touch()
	return nil
}

func (c *Customer) RemovePoints(points int) error {
	if points < 0 || points > c.Points {
		return ErrInvalidPoints
	}
	c.Points -= points
	c.touch()
	return nil
}

func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now().UTC()
}
