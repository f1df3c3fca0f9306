package database

import (
	"testing"

	"cosmetics_back_end/internal/config"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScyllaConfigs(t *testing.T) {
	cfg := &config.Config{
		ScyllaHosts:    []string{"10.0.0.1", "10.0.0.2"},
		ScyllaProducts: config.ScyllaKeyspace{Name: "cosmetics_products", Role: "products_rw", Password: "p"},
		ScyllaUsers:    config.ScyllaKeyspace{Name: "cosmetics_users", Role: "users_rw"},
	}

	configs := loadScyllaConfigs(cfg)
	require.Len(t, configs, 2)

	products := configs["cosmetics_products"]
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, products.Hosts)
	assert.Equal(t, "products_rw", products.Username)
	assert.Equal(t, gocql.Quorum, products.Consistency)

	_, ok := configs[""]
	assert.False(t, ok)
}

func TestCreateScyllaCluster_MissingCA(t *testing.T) {
	_, err := createScyllaCluster(ScyllaKeyspaceConfig{
		Hosts:      []string{"127.0.0.1"},
		Keyspace:   "ks",
		SSLEnabled: true,
		CACertPath: "/nonexistent/ca.pem",
	})
	assert.Error(t, err)
}

func TestScyllaManager_UnknownKeyspace(t *testing.T) {
	sm := &ScyllaManager{sessions: map[string]*gocql.Session{}, configs: map[string]ScyllaKeyspaceConfig{}}
	_, err := sm.Session("absent")
	assert.Error(t, err)
}
