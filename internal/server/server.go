/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/Godmook/multigpu-be/internal/metrics"
	"github.com/Godmook/multigpu-be/internal/server/handlers"
)

// Server is the HTTP front of the inventory and queue views
type Server struct {
	router     *gin.Engine
	httpServer *http.Server

	// Handlers
	healthHandler    *handlers.HealthHandler
	nodesHandler     *handlers.NodesHandler
	workloadsHandler *handlers.WorkloadsHandler
	jobsHandler      *handlers.JobsHandler

	inventory handlers.InventoryService
	admission handlers.AdmissionService
}

// NewServer creates the HTTP server with all routes wired
func NewServer(
	addr string,
	inventory handlers.InventoryService,
	admission handlers.AdmissionService,
	jobs handlers.JobService,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestMetrics(), gzip.Gzip(gzip.DefaultCompression))

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		healthHandler:    handlers.NewHealthHandler(),
		nodesHandler:     handlers.NewNodesHandler(inventory),
		workloadsHandler: handlers.NewWorkloadsHandler(admission),
		jobsHandler:      handlers.NewJobsHandler(jobs),
		inventory:        inventory,
		admission:        admission,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check routes
	s.router.GET("/healthz", s.healthHandler.HandleHealthz)
	s.router.GET("/readyz", func(c *gin.Context) {
		s.healthHandler.HandleReadyz(c, s.inventory, s.admission)
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := s.router.Group("/api/v1")
	{
		// Node inventory routes
		apiV1.GET("/nodes", s.nodesHandler.HandleListNodes)
		apiV1.GET("/nodes/:name/gpus", s.nodesHandler.HandleNodeGPUs)
		apiV1.GET("/nodes/:name/gpus/:uuid/pods", s.nodesHandler.HandleGPUPods)

		// Admission queue routes
		apiV1.GET("/workloads/pending", s.workloadsHandler.HandlePendingWorkloads)

		// Job routes
		apiV1.GET("/jobs/pending", s.jobsHandler.HandlePendingJobs)
		apiV1.GET("/jobs/gpu-type/:type", s.jobsHandler.HandleJobsByGPUType)
		apiV1.POST("/jobs", s.jobsHandler.HandleSubmit)
		apiV1.POST("/jobs/raw", s.jobsHandler.HandleSubmitRaw)
		apiV1.PATCH("/jobs/:name/priority", s.jobsHandler.HandleUpdatePriority)
		apiV1.DELETE("/jobs/:name", s.jobsHandler.HandleDelete)
	}
}

// Router exposes the engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	klog.Infof("Starting HTTP server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
