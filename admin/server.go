// Licensed to the lpel project under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. The lpel project licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package admin is the HTTP introspection/control plane: worker and task
// state, prometheus metrics, pprof/fgprof profiling, and a FlatBuffers
// task snapshot export consumed by the operator CLI.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixge/fgprof"
	"github.com/gin-contrib/cors"
	ginpprof "github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lindb/common/pkg/logger"

	"github.com/lpel-project/lpel/config"
	"github.com/lpel-project/lpel/metrics"
)

var log = logger.GetLogger("Admin", "Server")

// api is registered the same way the teacher's own REST endpoints are:
// one handler type per resource, wired onto a gin.IRoutes.
type api interface {
	Register(route gin.IRoutes)
}

// Server is the admin HTTP plane.
type Server struct {
	cfg    config.Admin
	engine *gin.Engine
	srv    *http.Server
}

// New builds the admin server and registers every route. It does not
// start listening until Serve is called.
func New(cfg config.Admin, info RuntimeInfo) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	auth := NewAuthentication(cfg.AuthSecret)

	engine.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	engine.GET("/debug/fgprof", gin.WrapH(fgprof.Handler()))
	ginpprof.Register(engine)

	protected := engine.Group("/", auth.Middleware())
	(&WorkersAPI{info: info}).Register(protected)
	(&TasksAPI{info: info}).Register(protected)
	(&StreamsAPI{info: info}).Register(protected)
	(&MonitorAPI{info: info}).Register(protected)

	return &Server{cfg: cfg, engine: engine}
}

// Serve starts listening in a background goroutine. Call Shutdown to stop.
func (s *Server) Serve() {
	s.srv = &http.Server{Addr: s.cfg.Addr, Handler: s.engine}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("admin server stopped unexpectedly", logger.Error(err))
		}
	}()
}

// Shutdown gracefully stops the admin server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
