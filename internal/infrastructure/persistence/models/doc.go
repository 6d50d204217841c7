// Package models holds the GORM persistence models backing the edition
// domain. Domain entities stay free of ORM tags; these models carry the
// table mappings, and the repositories convert between the two.
package models
