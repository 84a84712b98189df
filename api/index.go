package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"ooru-foods/app"
	"ooru-foods/config"
	"ooru-foods/libs"
	"ooru-foods/models"

	"github.com/gin-gonic/gin"
)

var (
	handler http.Handler
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
		libs.InitLogger("production")

		cfg, err := config.LoadConfig()
		if err != nil {
			initErr = err
			return
		}

		// Serverless instances have no background flusher; carts flush on demand.
		application, err := app.New(context.Background(), cfg)
		if err != nil {
			initErr = err
			return
		}
		handler = application.Router
	})
}

// Handler is the serverless entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		slog.Error("Application failed to initialise", "error", initErr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"` + models.ErrBackendUnavailable.Error() + `"}`))
		return
	}
	handler.ServeHTTP(w, r)
}
