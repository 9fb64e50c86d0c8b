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

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	batchv1 "k8s.io/api/batch/v1"

	"github.com/Godmook/multigpu-be/internal/jobs"
	"github.com/Godmook/multigpu-be/internal/server/api"
)

// JobService is the job management surface the handlers need.
type JobService interface {
	Submit(ctx context.Context, req *jobs.SubmitRequest) (string, error)
	SubmitRaw(ctx context.Context, job *batchv1.Job) (string, error)
	Delete(ctx context.Context, name, namespace string) error
	UpdatePriority(ctx context.Context, name, namespace, priority string) error
	PendingJobs(ctx context.Context) ([]jobs.JobInfo, error)
	JobsByGPUType(ctx context.Context, gpuType string) ([]string, error)
}

// JobsHandler handles job submission and management endpoints
type JobsHandler struct {
	jobs JobService
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(jobs JobService) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// HandleSubmit handles POST /api/v1/jobs
func (h *JobsHandler) HandleSubmit(c *gin.Context) {
	var req jobs.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	name, err := h.jobs.Submit(c.Request.Context(), &req)
	if err != nil {
		h.jobError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.SubmitResponse{Submitted: true, JobName: name})
}

// HandleSubmitRaw handles POST /api/v1/jobs/raw
func (h *JobsHandler) HandleSubmitRaw(c *gin.Context) {
	var job batchv1.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	name, err := h.jobs.SubmitRaw(c.Request.Context(), &job)
	if err != nil {
		h.jobError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.SubmitResponse{Submitted: true, JobName: name})
}

// HandleDelete handles DELETE /api/v1/jobs/:name
func (h *JobsHandler) HandleDelete(c *gin.Context) {
	name := c.Param("name")
	if err := h.jobs.Delete(c.Request.Context(), name, c.Query("namespace")); err != nil {
		h.jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DeleteResponse{Deleted: true, JobID: name})
}

// HandleUpdatePriority handles PATCH /api/v1/jobs/:name/priority
func (h *JobsHandler) HandleUpdatePriority(c *gin.Context) {
	var req api.PriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	name := c.Param("name")
	if err := h.jobs.UpdatePriority(c.Request.Context(), name, c.Query("namespace"), req.Priority); err != nil {
		h.jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.PriorityResponse{JobID: name, NewPriority: req.Priority})
}

// HandlePendingJobs handles GET /api/v1/jobs/pending
func (h *JobsHandler) HandlePendingJobs(c *gin.Context) {
	pending, err := h.jobs.PendingJobs(c.Request.Context())
	if err != nil {
		h.jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.PendingJobsResponse{PendingJobs: pending})
}

// HandleJobsByGPUType handles GET /api/v1/jobs/gpu-type/:type
func (h *JobsHandler) HandleJobsByGPUType(c *gin.Context) {
	names, err := h.jobs.JobsByGPUType(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.JobsByTypeResponse{Jobs: names})
}

func (h *JobsHandler) jobError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, jobs.ErrJobExists):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: err.Error()})
}
