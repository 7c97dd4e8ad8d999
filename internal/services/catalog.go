package services

import (
	"github.com/keyscope/keyscope/internal/config"
	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/store"
)

// Deployment holds the handles of one configured database.
type Deployment struct {
	Config   config.DatabaseConfig
	Client   coordinator.StoreClient
	Topology coordinator.Topology
}

// DeploymentsFromRegistry exposes the registry backends as deployments.
func DeploymentsFromRegistry(reg *store.Registry) []Deployment {
	backends := reg.List()
	out := make([]Deployment, 0, len(backends))
	for _, b := range backends {
		out = append(out, Deployment{Config: b.Config, Client: b.Client, Topology: b.Topology})
	}
	return out
}

// DatabaseService lists configured databases.
type DatabaseService struct {
	deployments []Deployment
	byID        map[string]int
}

// NewDatabaseService creates a DatabaseService
func NewDatabaseService(deployments []Deployment) *DatabaseService {
	byID := make(map[string]int, len(deployments))
	for i, d := range deployments {
		byID[d.Config.ID] = i
	}
	return &DatabaseService{deployments: deployments, byID: byID}
}

// List returns every database in configuration order.
func (s *DatabaseService) List() []models.DatabaseResponse {
	out := make([]models.DatabaseResponse, 0, len(s.deployments))
	for _, d := range s.deployments {
		out = append(out, toDatabaseResponse(d.Config))
	}
	return out
}

// Get returns one database or DATABASE_NOT_FOUND.
func (s *DatabaseService) Get(id string) (*models.DatabaseResponse, error) {
	d, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	resp := toDatabaseResponse(d.Config)
	return &resp, nil
}

func (s *DatabaseService) lookup(id string) (*Deployment, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, NewServiceErrorWithDetails(CodeDatabaseNotFound, "Database not found",
			map[string]interface{}{"database": id})
	}
	return &s.deployments[i], nil
}

func toDatabaseResponse(db config.DatabaseConfig) models.DatabaseResponse {
	name := db.Name
	if name == "" {
		name = db.ID
	}
	return models.DatabaseResponse{
		ID:      db.ID,
		Name:    name,
		Host:    db.Host,
		Port:    db.Port,
		Cluster: db.Cluster,
	}
}
