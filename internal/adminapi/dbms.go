package adminapi

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stockpos/stockpos/internal/webserver"
)

type restorePayload struct {
	Path string `json:"path"`
}

// registerDbmsRoutes registers database backup/restore endpoints
func registerDbmsRoutes() {
	webserver.ApiPOST("/dbms/backup", dbmsBackupDatabase)
	webserver.ApiPOST("/dbms/restore", dbmsRestoreDatabase)
}

func dbmsBackupDatabase(c echo.Context) error {
	path, err := GetApp(c).BackupRunner().RunScheduled(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "BACKUP_ERROR", "Backup failed", err.Error())
	}
	return ok(c, map[string]string{"path": path})
}

func dbmsRestoreDatabase(c echo.Context) error {
	var payload restorePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse restore request", nil)
	}
	runner := GetApp(c).BackupRunner()

	// restores are confined to the managed backup directory
	path := filepath.Clean(payload.Path)
	if !strings.HasPrefix(path, runner.Dir()+string(filepath.Separator)) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Restore path must be inside the backup directory", nil)
	}

	if err := runner.Restore(c.Request().Context(), path); err != nil {
		return fail(c, http.StatusInternalServerError, "RESTORE_ERROR", "Restore failed", err.Error())
	}
	return ok(c, map[string]string{"path": path})
}
