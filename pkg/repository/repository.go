package repository

import (
	"context"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Point lookups return (nil, nil) when the id does not exist; callers decide
// how to surface that.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type TunnelRepo interface {
	CreateTunnel(ctx context.Context, t *models.Tunnel) error
	GetTunnel(ctx context.Context, id string) (*models.Tunnel, error)
	UpdateTunnel(ctx context.Context, id string, patch models.TunnelPatch) (*models.Tunnel, error)
	DeleteTunnel(ctx context.Context, id string) (bool, error)
	ListTunnels(ctx context.Context) ([]models.Tunnel, error)
}

type SensorRepo interface {
	CreateSensor(ctx context.Context, s *models.Sensor) (int64, error)
	GetSensor(ctx context.Context, id int64) (*models.Sensor, error)
	UpdateSensor(ctx context.Context, id int64, patch models.SensorPatch) (*models.Sensor, error)
	DeleteSensor(ctx context.Context, id int64) (bool, error)
	ListSensorsByTunnel(ctx context.Context, tunnelID string) ([]models.Sensor, error)
}

type ClosureRequestRepo interface {
	CreateClosureRequest(ctx context.Context, cr *models.ClosureRequest) (int64, error)
	GetClosureRequest(ctx context.Context, id int64) (*models.ClosureRequest, error)
	UpdateClosureRequest(ctx context.Context, id int64, patch models.ClosureRequestPatch) (*models.ClosureRequest, error)
	DeleteClosureRequest(ctx context.Context, id int64) (bool, error)
	ListClosureRequests(ctx context.Context) ([]models.ClosureRequest, error)
	ListPendingClosureRequests(ctx context.Context) ([]models.ClosureRequest, error)
	ListClosureRequestsByTunnel(ctx context.Context, tunnelID string) ([]models.ClosureRequest, error)
	ListClosureRequestsByRequester(ctx context.Context, userID int64) ([]models.ClosureRequest, error)
}

type OperationsLogRepo interface {
	AppendLog(ctx context.Context, l *models.OperationsLog) (int64, error)
	ListLogs(ctx context.Context, filter models.LogFilter) ([]models.OperationsLog, error)
	ListLogsByEntity(ctx context.Context, entityID string) ([]models.OperationsLog, error)
}
