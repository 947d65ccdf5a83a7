// Package models contains the GORM persistence models. Domain types carry
// no ORM tags; each model converts to and from its aggregate with ToDomain
// and a ...FromDomain constructor.
package models
