package endpoints

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/EasterCompany/dex-meetup-service/config"
	"github.com/EasterCompany/dex-meetup-service/services"
	"github.com/EasterCompany/dex-meetup-service/utils"
)

// ServiceHandler provides a comprehensive status report for the service.
func ServiceHandler(cfg *config.Config, status *services.StatusServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := utils.GetVersion()

		// Create a display version with a shortened string for the report.
		displayVersion := utils.Version{
			Tag: version.Tag,
			Str: version.Tag,
			Obj: version.Obj,
		}

		metrics := map[string]interface{}{}
		if status != nil {
			metrics = status.Metrics()
		}

		report := utils.ServiceReport{
			Version: displayVersion,
			Health:  utils.GetHealth(),
			Metrics: metrics,
			Config:  cfg.GetSanitized(),
		}

		w.Header().Set("Content-Type", "application/json")

		// Check health status to set the correct HTTP status code
		if report.Health.Status == utils.HealthOK {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Printf("Failed to encode service report: %v", err)
		}
	}
}
