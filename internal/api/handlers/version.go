package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
)

// Version is set via ldflags at build time
var Version = "dev"

// Features describes optional behaviour enabled in this deployment.
type Features struct {
	IdentityCache bool `json:"identityCache"`
	RoleSelection bool `json:"roleSelection"`
}

// VersionHandler reports build and deployment information.
type VersionHandler struct {
	mode     string
	features Features
}

// NewVersionHandler creates a version handler for the given server mode.
func NewVersionHandler(mode string, features Features) *VersionHandler {
	return &VersionHandler{mode: mode, features: features}
}

// GetVersion godoc
// @Summary Get version information
// @Description Returns version information about the Quill server
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /version [get]
func (h *VersionHandler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    Version,
		"mode":       h.mode,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"features":   h.features,
	})
}
