package handlers

import (
	"encoding/json"
	"net/http"
	"taskKeeper/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func toJSON(storage map[string]any, payload Payload) {
	storage[payload.Key] = payload.Payload
}

func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	storage := make(map[string]any)
	for _, pl := range payload {
		toJSON(storage, pl)
	}
	responseWithBody(w, code, storage)
}

func responseWithBody(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("HTTP: Не удалось записать ответ", zap.Error(err))
	}
}

func responseWithYAML(w http.ResponseWriter, code int, body any) {
	data, err := yaml.Marshal(body)
	if err != nil {
		logger.Error("HTTP: Ошибка сериализации YAML", err)
		responseWithError(w, http.StatusInternalServerError, "не удалось сформировать YAML")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logger.Warn("HTTP: Не удалось записать ответ", zap.Error(err))
	}
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code, toPayload("error", message))
}

func healthCheck(w http.ResponseWriter, err error) {
	if err != nil {
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
			toPayload("error", err.Error()),
		)
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
	)
}
