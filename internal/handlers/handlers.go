package handlers

import (
	"velvet_back_end/internal/config"
)

var cfg *config.Config

// Init reçoit la configuration construite au démarrage.
func Init(c *config.Config) {
	cfg = c
}
