package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/repository"
	"github.com/gorilla/mux"
)

type SensorsHandler struct {
	sensors repository.SensorRepo
	tunnels repository.TunnelRepo
}

func NewSensorsHandler(sensors repository.SensorRepo, tunnels repository.TunnelRepo) *SensorsHandler {
	return &SensorsHandler{sensors: sensors, tunnels: tunnels}
}

func (h *SensorsHandler) ListByTunnel(w http.ResponseWriter, r *http.Request) {
	tunnelID := mux.Vars(r)["tunnelId"]

	tunnel, err := h.tunnels.GetTunnel(r.Context(), tunnelID)
	if err != nil {
		writeError(w, "failed to fetch tunnel", http.StatusInternalServerError)
		return
	}
	if tunnel == nil {
		writeError(w, "tunnel not found", http.StatusNotFound)
		return
	}

	sensors, err := h.sensors.ListSensorsByTunnel(r.Context(), tunnelID)
	if err != nil {
		writeError(w, "failed to fetch sensors", http.StatusInternalServerError)
		return
	}
	if sensors == nil {
		sensors = []models.Sensor{}
	}
	writeJSON(w, sensors, http.StatusOK)
}

func (h *SensorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !validateRequest(r.Context(), w, "sensor_create", body) {
		return
	}

	var sensor models.Sensor
	if err := json.Unmarshal(body, &sensor); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	tunnel, err := h.tunnels.GetTunnel(r.Context(), sensor.TunnelID)
	if err != nil {
		writeError(w, "failed to fetch tunnel", http.StatusInternalServerError)
		return
	}
	if tunnel == nil {
		writeError(w, "tunnel not found", http.StatusNotFound)
		return
	}

	id, err := h.sensors.CreateSensor(r.Context(), &sensor)
	if err != nil {
		writeError(w, "failed to create sensor", http.StatusInternalServerError)
		return
	}
	sensor.ID = id
	writeJSON(w, sensor, http.StatusCreated)
}

func (h *SensorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid sensor id", http.StatusBadRequest)
		return
	}

	var patch models.SensorPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	current, err := h.sensors.GetSensor(r.Context(), id)
	if err != nil {
		writeError(w, "failed to fetch sensor", http.StatusInternalServerError)
		return
	}
	if current == nil {
		writeError(w, "sensor not found", http.StatusNotFound)
		return
	}

	updated, err := h.sensors.UpdateSensor(r.Context(), id, patch)
	if err != nil {
		writeError(w, "failed to update sensor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, updated, http.StatusOK)
}
