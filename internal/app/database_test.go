package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockpos/stockpos/config"
)

func TestOpenDialectorByType(t *testing.T) {
	assert.Equal(t, "sqlite", openDialector(config.DBConfig{Type: "sqlite", Name: "stockpos.db"}).Name())
	assert.Equal(t, "postgres", openDialector(config.DBConfig{Type: "postgres"}).Name())
	// unset type keeps the postgres default
	assert.Equal(t, "postgres", openDialector(config.DBConfig{}).Name())
}
