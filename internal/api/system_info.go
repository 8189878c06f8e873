// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/taibuivan/gazette/internal/platform/constants"
	"github.com/taibuivan/gazette/internal/platform/respond"
)

// SystemInfo is what the admin console shows about the running process.
type SystemInfo struct {
	App           string `json:"app"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	GoVersion     string `json:"goVersion"`
	Goroutines    int    `json:"goroutines"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// NewSystemInfoHandler answers GET /api/admin/system_info.
func NewSystemInfoHandler(environment string, startedAt time.Time) http.HandlerFunc {
	return func(writer http.ResponseWriter, _ *http.Request) {
		respond.OK(writer, SystemInfo{
			App:           constants.AppName,
			Version:       constants.AppVersion,
			Environment:   environment,
			GoVersion:     runtime.Version(),
			Goroutines:    runtime.NumGoroutine(),
			UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		})
	}
}
