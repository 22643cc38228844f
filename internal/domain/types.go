package domain

import "github.com/lib/pq"

type (
	Email    = string
	Password = string
	UserId   = int64
	Username = string

	BoardId   = string
	BoardSlug = string
	BlockId   = string

	// Collaborators is stored as a postgres text[] column
	Collaborators = pq.StringArray
)
