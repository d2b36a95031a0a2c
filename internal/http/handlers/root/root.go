// Package root содержит служебные обработчики: приветствие и проверку живости.
package root

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http/response"
)

// Welcome godoc
// @Summary Приветствие
// @Tags Service
// @Produce  json
// @Success 200 {object} response.Response
// @Router / [get]
func Welcome(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]string{
		"message": "Welcome to the Task Manager API",
	}))
}

// Health godoc
// @Summary Проверка живости
// @Tags Service
// @Produce  json
// @Success 200 {object} response.Response
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]string{
		"health": "ok",
	}))
}
