package util

import "github.com/google/uuid"

// NewID gera identificador aleatório (UUID v4) para entidades criadas no cliente.
func NewID() string {
	return uuid.NewString()
}
